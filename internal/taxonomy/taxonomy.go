package taxonomy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yungbote/datasynth-backend/internal/dataset"
	"github.com/yungbote/datasynth-backend/internal/platform/logger"
)

// LookupWarning records a category or tag name that did not resolve. The entry
// is skipped and the build continues.
type LookupWarning struct {
	Kind string
	Name string
}

func (w *LookupWarning) Error() string {
	return fmt.Sprintf("%s %q not found", w.Kind, w.Name)
}

// BuildTagTable collects the sorted set of trimmed tag names and numbers them from 1.
func BuildTagTable(m TagMap) *dataset.Table {
	seen := map[string]struct{}{}
	var names []string
	for _, c := range m {
		for _, tag := range c.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			names = append(names, tag)
		}
	}
	slices.Sort(names)

	t := dataset.NewTable(dataset.TableTag, dataset.TagColumns...)
	for i, name := range names {
		t.AppendRow(dataset.Row{"id": int64(i + 1), "name": name})
	}
	return t
}

// BuildCategoryTags links each mapped category to its tags by exact name.
func BuildCategoryTags(log *logger.Logger, m TagMap, categories, tags *dataset.Table) (*dataset.Table, []*LookupWarning) {
	if log == nil {
		log = logger.Nop()
	}
	categoryIDs := nameIndex(categories)
	tagIDs := nameIndex(tags)

	out := dataset.NewTable(dataset.TableCategoryTag, dataset.CategoryTagColumns...)
	var warnings []*LookupWarning
	var id int64
	for _, c := range m {
		categoryID, ok := categoryIDs[c.Category]
		if !ok {
			w := &LookupWarning{Kind: "category", Name: c.Category}
			log.Warn("Category not found, skipping its tags", "category", c.Category)
			warnings = append(warnings, w)
			continue
		}
		for _, tag := range c.Tags {
			tag = strings.TrimSpace(tag)
			tagID, ok := tagIDs[tag]
			if !ok {
				log.Warn("Tag not found, skipping", "category", c.Category, "tag", tag)
				warnings = append(warnings, &LookupWarning{Kind: "tag", Name: tag})
				continue
			}
			id++
			out.AppendRow(dataset.Row{"id": id, "category_id": categoryID, "tag_id": tagID})
		}
	}
	log.Info("Category tags built", "rows", out.Len(), "warnings", len(warnings))
	return out, warnings
}

// nameIndex maps name -> id, first occurrence wins.
func nameIndex(t *dataset.Table) map[string]int64 {
	out := make(map[string]int64, t.Len())
	for _, r := range t.Rows {
		id, ok := dataset.AsInt(r["id"])
		if !ok {
			continue
		}
		name := dataset.AsString(r["name"])
		if _, dup := out[name]; !dup {
			out[name] = id
		}
	}
	return out
}
