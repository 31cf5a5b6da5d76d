package taxonomy

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/datasynth-backend/internal/dataset"
)

// BuildCourseTags asks the generator to pick up to MaxCourseTags tags per
// course from the tags allowed for the course's category. Courses without a
// fullname or without allowed tags are skipped. An empty answer falls back to
// the category's first allowed tag. Names outside the allowed set are dropped.
func (tg *Tagger) BuildCourseTags(ctx context.Context, courses, categoryTags, tags *dataset.Table) (*dataset.Table, error) {
	out := dataset.NewTable(dataset.TableCourseTag, dataset.CourseTagColumns...)
	if courses.Len() == 0 || categoryTags.Len() == 0 || tags.Len() == 0 {
		tg.log.Warn("Course tags skipped, empty input", "courses", courses.Len(), "category_tags", categoryTags.Len(), "tags", tags.Len())
		return out, nil
	}

	tagName := make(map[int64]string, tags.Len())
	for _, r := range tags.Rows {
		if id, ok := dataset.AsInt(r["id"]); ok {
			tagName[id] = dataset.AsString(r["name"])
		}
	}
	allowed := map[int64][]int64{}
	for _, r := range categoryTags.Rows {
		c, ok1 := dataset.AsInt(r["category_id"])
		t, ok2 := dataset.AsInt(r["tag_id"])
		if ok1 && ok2 {
			if _, known := tagName[t]; known {
				allowed[c] = append(allowed[c], t)
			}
		}
	}

	type pending struct {
		courseID int64
		allowed  []int64
	}
	var prompts []string
	var queue []pending
	for _, r := range courses.Rows {
		id, ok := dataset.AsInt(r["id"])
		if !ok {
			continue
		}
		category, _ := dataset.AsInt(r["category"])
		fullname := strings.TrimSpace(dataset.AsString(r["fullname"]))
		ids := allowed[category]
		if fullname == "" || len(ids) == 0 {
			tg.log.Debug("Course skipped for tagging", "course_id", id, "category", category)
			continue
		}
		names := make([]string, len(ids))
		for i, t := range ids {
			names[i] = tagName[t]
		}
		prompts = append(prompts, selectionPrompt(fullname, dataset.AsString(r["summary"]), names))
		queue = append(queue, pending{courseID: id, allowed: ids})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lists := tg.CallSelection(ctx, prompts)
	if len(lists) != len(queue) {
		return nil, &dataset.GenerationIntegrityError{Table: dataset.TableCourseTag, Column: "tag_id", Expected: len(queue), Got: len(lists)}
	}

	var id int64
	for i, p := range queue {
		byName := make(map[string]int64, len(p.allowed))
		for _, t := range p.allowed {
			if _, dup := byName[tagName[t]]; !dup {
				byName[tagName[t]] = t
			}
		}
		chosen := lists[i]
		if len(chosen) == 0 {
			tg.log.Debug("Empty tag selection, using fallback", "course_id", p.courseID)
			chosen = []string{tagName[p.allowed[0]]}
		}
		seen := map[int64]struct{}{}
		for _, name := range chosen {
			if len(seen) == MaxCourseTags {
				break
			}
			t, ok := byName[strings.TrimSpace(name)]
			if !ok {
				tg.log.Debug("Selected tag not allowed, dropped", "course_id", p.courseID, "tag", name)
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			id++
			out.AppendRow(dataset.Row{"id": id, "course_id": p.courseID, "tag_id": t})
		}
	}
	tg.log.Info("Course tags built", "courses", len(queue), "rows", out.Len())
	return out, nil
}

func selectionPrompt(fullname, summary string, names []string) string {
	return fmt.Sprintf("Il corso si intitola '%s' e ha il seguente contenuto: %s. "+
		"Analizza il contenuto e seleziona solo i tag pertinenti tra quelli elencati. "+
		"Tag disponibili (non puoi inventarne altri): %s. "+
		"Restituisci esclusivamente una lista di massimo %d tag scelti, separati da virgola, "+
		"senza commenti, spiegazioni o aggiunte. Se nessun tag è rilevante, restituisci almeno uno tra quelli più generici.",
		fullname, summary, strings.Join(names, ", "), MaxCourseTags)
}

// BuildResourceTags grows the tag vocabulary with free-form tags for every
// resource. Names resolve case-insensitively against tags; unknown names are
// minted with the next free id. The input table is not modified: the grown
// copy is returned with the new resource links.
func (tg *Tagger) BuildResourceTags(ctx context.Context, resources, tags *dataset.Table) (*dataset.Table, *dataset.Table, error) {
	grown := tags.Clone()
	links := dataset.NewTable(dataset.TableResourceTag, dataset.ResourceTagColumns...)

	lookup := make(map[string]int64, grown.Len())
	var next int64
	for _, r := range grown.Rows {
		id, ok := dataset.AsInt(r["id"])
		if !ok {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(dataset.AsString(r["name"])))
		if _, dup := lookup[key]; !dup {
			lookup[key] = id
		}
		next = max(next, id)
	}

	prompts := make([]string, resources.Len())
	for i, r := range resources.Rows {
		prompts[i] = freeformPrompt(dataset.AsString(r["name"]), dataset.AsString(r["intro"]))
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	lists := tg.CallFreeform(ctx, prompts)
	if len(lists) != resources.Len() {
		return nil, nil, &dataset.GenerationIntegrityError{Table: dataset.TableResourceTag, Column: "tag_id", Expected: resources.Len(), Got: len(lists)}
	}

	minted := 0
	var id int64
	pairs := map[[2]int64]struct{}{}
	for i, r := range resources.Rows {
		resourceID, ok := dataset.AsInt(r["id"])
		if !ok {
			continue
		}
		list := lists[i]
		if len(list) > MaxResourceTags {
			list = list[:MaxResourceTags]
		}
		for _, name := range list {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			tagID, ok := lookup[key]
			if !ok {
				next++
				tagID = next
				lookup[key] = tagID
				grown.AppendRow(dataset.Row{"id": tagID, "name": name})
				minted++
			}
			pair := [2]int64{resourceID, tagID}
			if _, dup := pairs[pair]; dup {
				continue
			}
			pairs[pair] = struct{}{}
			id++
			links.AppendRow(dataset.Row{"id": id, "resource_id": resourceID, "tag_id": tagID})
		}
	}
	tg.log.Info("Resource tags built", "resources", resources.Len(), "links", links.Len(), "new_tags", minted, "tags", grown.Len())
	return grown, links, nil
}

func freeformPrompt(name, intro string) string {
	return fmt.Sprintf("Titolo: '%s'. Descrizione: '%s'. "+
		"Genera 1-3 tag sintetici e descrittivi, separati da virgola. "+
		"I tag devono essere brevi, utili per un sistema di raccomandazione, senza ripetizioni né commenti.",
		name, truncateRunes(intro, introRunes))
}
