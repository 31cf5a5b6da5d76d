package dataset

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func fixedFaker(seed uint64) *Faker {
	f := NewFaker(seed)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f.Now = func() time.Time { return now }
	return f
}

func TestFillFromSchema_Variants(t *testing.T) {
	tbl := NewTable("t", "id")
	AllocatePrimaryKeys(nil, tbl, 50)
	schema := Schema{
		{"lang", Constant("it")},
		{"format", Choice("topics", "weeks", "site")},
		{"score", FloatRange(1, 5, 1)},
		{"path", Null()},
		{"ts", Fake(FakeTimestamp)},
		{"ip", Fake(FakeIP)},
		{"password", Fake(FakePassword)},
	}
	if err := FillFromSchema(nil, tbl, schema, fixedFaker(11)); err != nil {
		t.Fatalf("FillFromSchema: %v", err)
	}

	lo := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC).Unix()
	hi := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Unix()
	for i, r := range tbl.Rows {
		if r["lang"] != "it" {
			t.Fatalf("row %d lang: want=it got=%v", i, r["lang"])
		}
		switch r["format"] {
		case "topics", "weeks", "site":
		default:
			t.Fatalf("row %d format: got=%v", i, r["format"])
		}
		score := r["score"].(float64)
		if score < 1 || score > 5 || math.Abs(score*10-math.Round(score*10)) > 1e-9 {
			t.Fatalf("row %d score: want one decimal in [1,5] got=%v", i, score)
		}
		if v, ok := r["path"]; !ok || v != nil {
			t.Fatalf("row %d path: want=nil got=%v", i, v)
		}
		ts := r["ts"].(int64)
		if ts < lo-86400 || ts > hi {
			t.Fatalf("row %d ts: want within 5y window got=%d", i, ts)
		}
		if ip := r["ip"].(string); strings.Count(ip, ".") != 3 {
			t.Fatalf("row %d ip: got=%q", i, ip)
		}
		if pw := r["password"].(string); !strings.HasPrefix(pw, "$2y$") || len(pw) != 65 {
			t.Fatalf("row %d password: got=%q", i, pw)
		}
	}
	if !CheckRange(nil, tbl, "score", 1, 5) {
		t.Fatalf("CheckRange: want=true")
	}
}

func TestFillFromSchema_UnknownKindLeavesColumn(t *testing.T) {
	tbl := NewTable("t", "id", "city")
	AllocatePrimaryKeys(nil, tbl, 3)
	tbl.Rows[0]["city"] = "Roma"

	err := FillFromSchema(nil, tbl, Schema{
		{"city", Fake("galaxy")},
		{"broken", Generator{}},
		{"lang", Constant("it")},
	}, fixedFaker(1))

	var cfg *ConfigurationError
	if !errors.As(err, &cfg) {
		t.Fatalf("error: want *ConfigurationError got=%v", err)
	}
	if tbl.Rows[0]["city"] != "Roma" {
		t.Fatalf("city: want untouched got=%v", tbl.Rows[0]["city"])
	}
	if tbl.HasColumn("broken") {
		t.Fatalf("broken column should not be created")
	}
	if tbl.Rows[2]["lang"] != "it" {
		t.Fatalf("later rules must still run: lang=%v", tbl.Rows[2]["lang"])
	}
}

func TestFillFromSchema_TableSchemasApply(t *testing.T) {
	users, courses, resources := buildBase(t, 4, 2, 3)
	ctx := BuildContext(courses, resources)
	ra := BuildRoleAssignments(nil, ctx, resources, users, NewRand(1))
	f := fixedFaker(3)
	for _, tc := range []struct {
		t *Table
		s Schema
	}{
		{users, UserSchema}, {courses, CourseSchema}, {resources, ResourceSchema},
		{ctx, ContextSchema}, {ra, RoleAssignmentSchema},
	} {
		if err := FillFromSchema(nil, tc.t, tc.s, f); err != nil {
			t.Fatalf("%s: %v", tc.t.Name, err)
		}
		if len(tc.t.Columns) == 0 {
			t.Fatalf("%s: header lost", tc.t.Name)
		}
	}
	if !CheckRange(nil, resources, "feedback_score", 1.0, 5.0) {
		t.Fatalf("feedback_score out of range")
	}
	if len(users.Columns) != len(UserColumns) {
		t.Fatalf("user header: schema must not add columns, want=%d got=%d", len(UserColumns), len(users.Columns))
	}
}

func TestFillCoherentUsers(t *testing.T) {
	tbl := NewTable(TableUser, UserColumns...)
	AllocatePrimaryKeys(nil, tbl, 20)
	_ = FillFromSchema(nil, tbl, UserSchema, fixedFaker(2))
	FillCoherentUsers(tbl, fixedFaker(2), "")

	for i, r := range tbl.Rows {
		first, last := r["firstname"].(string), r["lastname"].(string)
		want := strings.ToLower(first) + "." + strings.ToLower(last)
		if r["username"] != want {
			t.Fatalf("row %d username: want=%q got=%v", i, want, r["username"])
		}
		if r["email"] != want+"@example.com" {
			t.Fatalf("row %d email: want=%q got=%v", i, want+"@example.com", r["email"])
		}
	}
}

func TestFillCoherentUsers_CustomDomain(t *testing.T) {
	tbl := NewTable(TableUser, "id")
	AllocatePrimaryKeys(nil, tbl, 2)
	FillCoherentUsers(tbl, fixedFaker(9), "scuola.it")
	if e := tbl.Rows[1]["email"].(string); !strings.HasSuffix(e, "@scuola.it") {
		t.Fatalf("email: want suffix @scuola.it got=%q", e)
	}
}
