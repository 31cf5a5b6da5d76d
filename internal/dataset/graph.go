package dataset

import (
	"math/rand/v2"

	"github.com/yungbote/datasynth-backend/internal/platform/logger"
)

const (
	ContextLevelCourse   int64 = 50
	ContextLevelResource int64 = 70

	// RoleEditingTeacher is the only role handed out by BuildRoleAssignments.
	RoleEditingTeacher int64 = 3
)

// BuildContext emits one context per course (level 50) followed by one per
// resource (level 70), numbered from 1.
func BuildContext(courses, resources *Table) *Table {
	ctx := NewTable(TableContext, ContextColumns...)
	var id int64
	for _, c := range courses.Rows {
		id++
		ctx.AppendRow(Row{"id": id, "contextlevel": ContextLevelCourse, "instanceid": c["id"]})
	}
	for _, r := range resources.Rows {
		id++
		ctx.AppendRow(Row{"id": id, "contextlevel": ContextLevelResource, "instanceid": r["id"]})
	}
	return ctx
}

// BuildRoleAssignments gives every course and resource context an owning
// editing teacher: a random user for courses, the uploader for resources.
func BuildRoleAssignments(log *logger.Logger, contexts, resources, users *Table, rng *rand.Rand) *Table {
	log = orNop(log)
	if rng == nil {
		rng = NewRand(0)
	}
	out := NewTable(TableRoleAssignments, RoleAssignmentColumns...)
	userIDs := users.IDs()
	if len(userIDs) == 0 {
		if contexts.Len() > 0 {
			log.Warn("No users available, role assignments not built", "contexts", contexts.Len())
		}
		return out
	}
	randomUser := func() int64 { return userIDs[rng.IntN(len(userIDs))] }
	uploaders := make(map[int64]int64, resources.Len())
	for _, r := range resources.Rows {
		id, ok := AsInt(r["id"])
		if !ok {
			continue
		}
		if u, ok := AsInt(r["uploaded_by"]); ok {
			uploaders[id] = u
		}
	}

	var id int64
	for _, c := range contexts.Rows {
		level, _ := AsInt(c["contextlevel"])
		var owner int64
		switch level {
		case ContextLevelCourse:
			owner = randomUser()
		case ContextLevelResource:
			instance, _ := AsInt(c["instanceid"])
			uploader, ok := uploaders[instance]
			if !ok {
				uploader = randomUser()
			}
			owner = uploader
		default:
			continue
		}
		id++
		out.AppendRow(Row{
			"id":        id,
			"roleid":    RoleEditingTeacher,
			"contextid": c["id"],
			"userid":    owner,
		})
	}
	return out
}
