package taxonomy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/datasynth-backend/internal/dataset"
)

func categoryNames(m TagMap) []string {
	out := make([]string, len(m))
	for i, c := range m {
		out[i] = c.Category
	}
	return out
}

func TestParseTagMap_KeepsCategoryOrder(t *testing.T) {
	jsonData := []byte(`{"Zeta": ["b", "a"], "Alfa": ["c"], "Mezzo": []}`)
	yamlData := []byte("Zeta:\n  - b\n  - a\nAlfa:\n  - c\nMezzo: []\n")

	for format, data := range map[string][]byte{"json": jsonData, "yaml": yamlData} {
		m, err := ParseTagMap(data, format)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", format, err)
		}
		if got := strings.Join(categoryNames(m), ","); got != "Zeta,Alfa,Mezzo" {
			t.Fatalf("%s order: want=Zeta,Alfa,Mezzo got=%s", format, got)
		}
		if got := strings.Join(m[0].Tags, ","); got != "b,a" {
			t.Fatalf("%s tags: want=b,a got=%s", format, got)
		}
	}
}

func TestParseTagMap_Rejects(t *testing.T) {
	cases := []struct {
		format string
		data   string
	}{
		{"json", `["a", "b"]`},
		{"json", `{"a": "not a list"}`},
		{"yaml", "- a\n- b\n"},
		{"yaml", "a: plain\n"},
		{"toml", "a = 1"},
	}
	for _, tc := range cases {
		if _, err := ParseTagMap([]byte(tc.data), tc.format); err == nil {
			t.Fatalf("%s %q: expected error", tc.format, tc.data)
		}
	}
}

func TestLoadTagMap(t *testing.T) {
	m, err := LoadTagMap("")
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if len(m) != len(DefaultTagMap()) {
		t.Fatalf("default len: want=%d got=%d", len(DefaultTagMap()), len(m))
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "tags.JSON")
	if err := os.WriteFile(path, []byte(`{"B": ["x"], "A": ["y"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err = LoadTagMap(path)
	if err != nil {
		t.Fatalf("json file: %v", err)
	}
	if got := strings.Join(categoryNames(m), ","); got != "B,A" {
		t.Fatalf("json file order: want=B,A got=%s", got)
	}

	if _, err := LoadTagMap(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDefaultTagMap_MatchesSeededCategories(t *testing.T) {
	categories := dataset.SeedCourseCategories()
	tags := BuildTagTable(DefaultTagMap())
	links, warnings := BuildCategoryTags(nil, DefaultTagMap(), categories, tags)
	if len(warnings) != 0 {
		t.Fatalf("warnings: want none got=%v", warnings)
	}
	perCategory := map[int64]int{}
	for _, r := range links.Rows {
		c, _ := dataset.AsInt(r["category_id"])
		perCategory[c]++
	}
	for _, id := range categories.IDs() {
		if perCategory[id] == 0 {
			t.Fatalf("category %d has no tags", id)
		}
	}
	if !dataset.CheckForeignKeys(nil, links, "tag_id", tags, "id") {
		t.Fatalf("tag fk check failed")
	}
}

func TestBuildTagTable(t *testing.T) {
	m := TagMap{
		{Category: "A", Tags: []string{"zeta", " alfa ", "beta", ""}},
		{Category: "B", Tags: []string{"beta", "gamma"}},
	}
	tags := BuildTagTable(m)
	var names []string
	for _, r := range tags.Rows {
		names = append(names, dataset.AsString(r["name"]))
	}
	if got := strings.Join(names, ","); got != "alfa,beta,gamma,zeta" {
		t.Fatalf("names: want=alfa,beta,gamma,zeta got=%s", got)
	}
	if !dataset.CheckPrimaryKeys(nil, tags) {
		t.Fatalf("ids check failed")
	}
	if id, _ := dataset.AsInt(tags.Rows[0]["id"]); id != 1 {
		t.Fatalf("first id: want=1 got=%d", id)
	}
}

func TestBuildCategoryTags_SkipsUnknownNames(t *testing.T) {
	categories := dataset.NewTable(dataset.TableCourseCategories, "id", "name")
	categories.AppendRow(dataset.Row{"id": int64(30), "name": "Nota"})
	tags := dataset.NewTable(dataset.TableTag, dataset.TagColumns...)
	tags.AppendRow(dataset.Row{"id": int64(1), "name": "uno"})

	m := TagMap{
		{Category: "Ignota", Tags: []string{"uno"}},
		{Category: "Nota", Tags: []string{"uno", "due"}},
	}
	links, warnings := BuildCategoryTags(nil, m, categories, tags)
	if links.Len() != 1 {
		t.Fatalf("rows: want=1 got=%d", links.Len())
	}
	if len(warnings) != 2 {
		t.Fatalf("warnings: want=2 got=%d", len(warnings))
	}
	if warnings[0].Kind != "category" || warnings[0].Name != "Ignota" {
		t.Fatalf("first warning: got=%v", warnings[0])
	}
	if warnings[1].Kind != "tag" || warnings[1].Name != "due" {
		t.Fatalf("second warning: got=%v", warnings[1])
	}
	if c, _ := dataset.AsInt(links.Rows[0]["category_id"]); c != 30 {
		t.Fatalf("category_id: want=30 got=%d", c)
	}
}
