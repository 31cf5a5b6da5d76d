package dataset

import (
	"fmt"

	"github.com/yungbote/datasynth-backend/internal/platform/logger"
)

// Validators report the first violation they find through log and return false.
// None of them mutate their inputs.

const maxReported = 10

// CheckPrimaryKeys: id column present, no nulls, numeric, unique, strictly increasing.
func CheckPrimaryKeys(log *logger.Logger, t *Table) bool {
	log = orNop(log)
	if !t.HasColumn("id") {
		log.Error("Missing id column", "table", t.Name)
		return false
	}
	seen := make(map[int64]struct{}, t.Len())
	var prev int64
	for i, r := range t.Rows {
		raw := r["id"]
		if raw == nil {
			log.Error("Null id", "table", t.Name, "row", i)
			return false
		}
		id, ok := AsInt(raw)
		if !ok {
			log.Error("Non-numeric id", "table", t.Name, "row", i, "value", raw)
			return false
		}
		if _, dup := seen[id]; dup {
			log.Error("Duplicate id", "table", t.Name, "row", i, "id", id)
			return false
		}
		if i > 0 && id <= prev {
			log.Error("Ids not strictly increasing", "table", t.Name, "row", i, "id", id, "previous", prev)
			return false
		}
		seen[id] = struct{}{}
		prev = id
	}
	return true
}

// CheckForeignKeys: every non-null dest.column value exists in ref.refColumn.
func CheckForeignKeys(log *logger.Logger, dest *Table, column string, ref *Table, refColumn string) bool {
	log = orNop(log)
	if !dest.HasColumn(column) {
		log.Error("Missing foreign key column", "table", dest.Name, "column", column)
		return false
	}
	if !ref.HasColumn(refColumn) {
		log.Error("Missing referenced column", "table", ref.Name, "column", refColumn)
		return false
	}
	valid := keySet(ref, refColumn)
	var bad []string
	for _, r := range dest.Rows {
		v := r[column]
		if v == nil {
			continue
		}
		if _, ok := valid[key(v)]; !ok {
			bad = append(bad, key(v))
		}
	}
	if len(bad) > 0 {
		log.Error("Dangling foreign keys", "table", dest.Name, "column", column, "references", ref.Name, "count", len(bad), "sample", sample(bad))
		return false
	}
	return true
}

// CheckContext: valid keys, one row per course then one per resource, contextlevel
// in {50,70} matching that position, and instanceid resolving against courses (50)
// or resources (70).
func CheckContext(log *logger.Logger, ctx, courses, resources *Table) bool {
	log = orNop(log)
	if !CheckPrimaryKeys(log, ctx) {
		return false
	}
	if want := courses.Len() + resources.Len(); ctx.Len() != want {
		log.Error("Context cardinality mismatch", "table", ctx.Name, "rows", ctx.Len(), "want", want)
		return false
	}
	courseIDs := keySet(courses, "id")
	resourceIDs := keySet(resources, "id")
	var bad []string
	for i, r := range ctx.Rows {
		level, ok := AsInt(r["contextlevel"])
		if !ok || (level != ContextLevelCourse && level != ContextLevelResource) {
			log.Error("Invalid context level", "table", ctx.Name, "row", i, "contextlevel", r["contextlevel"])
			return false
		}
		expected := ContextLevelResource
		if i < courses.Len() {
			expected = ContextLevelCourse
		}
		if level != expected {
			log.Error("Context rows out of order", "table", ctx.Name, "row", i, "contextlevel", level, "want", expected)
			return false
		}
		instance := key(r["instanceid"])
		switch level {
		case ContextLevelCourse:
			if _, ok := courseIDs[instance]; !ok {
				bad = append(bad, instance)
			}
		case ContextLevelResource:
			if _, ok := resourceIDs[instance]; !ok {
				bad = append(bad, instance)
			}
		}
	}
	if len(bad) > 0 {
		log.Error("Unresolved context instances", "table", ctx.Name, "count", len(bad), "sample", sample(bad))
		return false
	}
	return true
}

// CheckRoleAssignments: valid keys, one row per context, contextid and userid
// resolve, roleid is 3.
func CheckRoleAssignments(log *logger.Logger, ra, contexts, users *Table) bool {
	log = orNop(log)
	if !CheckPrimaryKeys(log, ra) {
		return false
	}
	if ra.Len() != contexts.Len() {
		log.Error("Role assignment cardinality mismatch", "table", ra.Name, "rows", ra.Len(), "contexts", contexts.Len())
		return false
	}
	contextIDs := keySet(contexts, "id")
	userIDs := keySet(users, "id")
	for i, r := range ra.Rows {
		if _, ok := contextIDs[key(r["contextid"])]; !ok {
			log.Error("Unresolved contextid", "table", ra.Name, "row", i, "contextid", r["contextid"])
			return false
		}
		if _, ok := userIDs[key(r["userid"])]; !ok {
			log.Error("Unresolved userid", "table", ra.Name, "row", i, "userid", r["userid"])
			return false
		}
		if role, ok := AsInt(r["roleid"]); !ok || role != RoleEditingTeacher {
			log.Error("Unexpected roleid", "table", ra.Name, "row", i, "roleid", r["roleid"])
			return false
		}
	}
	return true
}

// CheckRange: every non-null value of column lies in [min, max].
func CheckRange(log *logger.Logger, t *Table, column string, min, max float64) bool {
	log = orNop(log)
	if !t.HasColumn(column) {
		log.Error("Missing range column", "table", t.Name, "column", column)
		return false
	}
	for i, r := range t.Rows {
		v := r[column]
		if v == nil {
			continue
		}
		f, ok := AsFloat(v)
		if !ok {
			log.Error("Non-numeric value in range column", "table", t.Name, "column", column, "row", i, "value", v)
			return false
		}
		if f < min || f > max {
			log.Error("Value out of range", "table", t.Name, "column", column, "row", i, "value", f, "min", min, "max", max)
			return false
		}
	}
	return true
}

// CheckUnique: no two rows share a value in column. Nulls are ignored.
func CheckUnique(log *logger.Logger, t *Table, column string) bool {
	log = orNop(log)
	if !t.HasColumn(column) {
		log.Error("Missing unique column", "table", t.Name, "column", column)
		return false
	}
	seen := make(map[string]struct{}, t.Len())
	for i, r := range t.Rows {
		if r[column] == nil {
			continue
		}
		k := key(r[column])
		if _, dup := seen[k]; dup {
			log.Error("Duplicate value", "table", t.Name, "column", column, "row", i, "value", k)
			return false
		}
		seen[k] = struct{}{}
	}
	return true
}

// CheckUniquePairs: no two rows share the (a, b) pair.
func CheckUniquePairs(log *logger.Logger, t *Table, a, b string) bool {
	log = orNop(log)
	if !t.HasColumn(a) || !t.HasColumn(b) {
		log.Error("Missing pair columns", "table", t.Name, "columns", []string{a, b})
		return false
	}
	seen := make(map[[2]string]struct{}, t.Len())
	for i, r := range t.Rows {
		k := [2]string{key(r[a]), key(r[b])}
		if _, dup := seen[k]; dup {
			log.Error("Duplicate pair", "table", t.Name, "row", i, a, k[0], b, k[1])
			return false
		}
		seen[k] = struct{}{}
	}
	return true
}

// key normalises numeric values so 3, int64(3) and 3.0 compare equal.
func key(v any) string {
	if i, ok := AsInt(v); ok {
		return fmt.Sprintf("i:%d", i)
	}
	return "s:" + AsString(v)
}

func keySet(t *Table, column string) map[string]struct{} {
	out := make(map[string]struct{}, t.Len())
	if t == nil {
		return out
	}
	for _, r := range t.Rows {
		if v := r[column]; v != nil {
			out[key(v)] = struct{}{}
		}
	}
	return out
}

func sample(values []string) []string {
	if len(values) > maxReported {
		return values[:maxReported]
	}
	return values
}
