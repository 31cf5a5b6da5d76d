package generation

import (
	"context"

	"github.com/yungbote/datasynth-backend/internal/dataset"
)

func (p *Pipeline) CourseFullname(ctx context.Context, courses, categories *dataset.Table) error {
	return p.FillColumn(ctx, courses, FillSpec{
		Target:   "fullname",
		Template: promptCourseFullname,
		Projections: []Projection{
			Lookup("category_name", categories, "category", "name"),
			Lookup("category_description", categories, "category", "description"),
		},
		BatchSize: 500,
	})
}

func (p *Pipeline) CourseShortname(ctx context.Context, courses *dataset.Table) error {
	return p.FillColumn(ctx, courses, FillSpec{Target: "shortname", Template: promptCourseShortname, BatchSize: 10})
}

func (p *Pipeline) CourseSummary(ctx context.Context, courses *dataset.Table) error {
	return p.FillColumn(ctx, courses, FillSpec{Target: "summary", Template: promptCourseSummary, BatchSize: 20})
}

func (p *Pipeline) CourseLevel(ctx context.Context, courses *dataset.Table) error {
	return p.FillColumn(ctx, courses, FillSpec{
		Target:    "course_level",
		Template:  promptCourseLevel,
		BatchSize: 10,
		Validator: IntRange(1, 5),
	})
}

func (p *Pipeline) ResourceName(ctx context.Context, resources, courses *dataset.Table) error {
	return p.FillColumn(ctx, resources, FillSpec{
		Target:   "name",
		Template: promptResourceName,
		Projections: []Projection{
			Lookup("course_name", courses, "course", "fullname"),
			Lookup("course_summary", courses, "course", "summary"),
		},
		BatchSize: 25,
	})
}

func (p *Pipeline) ResourceIntro(ctx context.Context, resources *dataset.Table) error {
	return p.FillColumn(ctx, resources, FillSpec{Target: "intro", Template: promptResourceIntro, BatchSize: 25})
}

// ResourceLevel reads the parent course level, so it must run after CourseLevel.
func (p *Pipeline) ResourceLevel(ctx context.Context, resources, courses *dataset.Table) error {
	return p.FillColumn(ctx, resources, FillSpec{
		Target:      "resource_level",
		Template:    promptResourceLevel,
		Projections: []Projection{Lookup("course_level", courses, "course", "course_level")},
		BatchSize:   100,
		Validator:   IntRange(1, 5),
	})
}

// Step is one column fill in dependency order.
type Step struct {
	Table  string
	Column string
	Run    func(ctx context.Context) error
}

// Steps lists the semantic column fills for courses then resources. Each step
// reads columns written by the steps before it.
func (p *Pipeline) Steps(courses, resources, categories *dataset.Table) []Step {
	return []Step{
		{dataset.TableCourse, "fullname", func(ctx context.Context) error { return p.CourseFullname(ctx, courses, categories) }},
		{dataset.TableCourse, "shortname", func(ctx context.Context) error { return p.CourseShortname(ctx, courses) }},
		{dataset.TableCourse, "summary", func(ctx context.Context) error { return p.CourseSummary(ctx, courses) }},
		{dataset.TableCourse, "course_level", func(ctx context.Context) error { return p.CourseLevel(ctx, courses) }},
		{dataset.TableResource, "name", func(ctx context.Context) error { return p.ResourceName(ctx, resources, courses) }},
		{dataset.TableResource, "intro", func(ctx context.Context) error { return p.ResourceIntro(ctx, resources) }},
		{dataset.TableResource, "resource_level", func(ctx context.Context) error { return p.ResourceLevel(ctx, resources, courses) }},
	}
}
