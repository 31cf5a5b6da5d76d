package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/datasynth-backend/internal/dataset"
	"github.com/yungbote/datasynth-backend/internal/generation"
	"github.com/yungbote/datasynth-backend/internal/taxonomy"
)

const (
	progressPrepare  = 0
	progressKeys     = 15
	progressGraph    = 30
	progressSchema   = 45
	progressExternal = 60
	progressExtLast  = 85
	progressTags     = 90
	progressDone     = 100
)

func (s *run) execute(ctx context.Context, p Params) (*Dataset, error) {
	if err := s.checkpoint(ctx, progressPrepare, "Preparing dataset"); err != nil {
		return nil, err
	}
	s.prepare()

	stages := []struct {
		name     string
		progress int
		message  string
		fn       func(ctx context.Context) error
	}{
		{"keys", progressKeys, "Generating primary and foreign keys", func(ctx context.Context) error { return s.keys(p) }},
		{"graph", progressGraph, "Building context and role assignments", func(ctx context.Context) error { return s.graph() }},
		{"schema", progressSchema, "Filling columns from schemas", func(ctx context.Context) error { return s.schema() }},
		{"external", progressExternal, "Generating semantic columns", s.external},
		{"tags", progressTags, "Generating tags", s.tagging},
	}
	for _, st := range stages {
		// the external stage reports its own checkpoints
		if st.name != "external" {
			if err := s.checkpoint(ctx, st.progress, st.message); err != nil {
				return nil, err
			}
		}
		if err := s.stage(ctx, st.name, st.fn); err != nil {
			return nil, err
		}
	}

	out := &Dataset{
		RunID:     s.id,
		CreatedAt: s.cfg.Now(),
		Tables: map[string]*dataset.Table{
			dataset.TableUser:             s.users,
			dataset.TableCourse:           s.courses,
			dataset.TableResource:         s.resources,
			dataset.TableContext:          s.contexts,
			dataset.TableRole:             s.roles,
			dataset.TableRoleAssignments:  s.roleAssignments,
			dataset.TableCourseCategories: s.categories,
			dataset.TableTag:              s.tags,
			dataset.TableCategoryTag:      s.categoryTags,
			dataset.TableCourseTag:        s.courseTags,
			dataset.TableResourceTag:      s.resourceTags,
		},
	}
	s.cfg.Store.Publish(out)
	if err := s.emitCheckpoint(ctx, Checkpoint{RunID: s.id, Progress: progressDone, Message: "Synthetic data generation completed", Result: out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *run) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := otel.Tracer("datasynth/orchestrator").Start(ctx, "orchestrator."+name)
	defer span.End()
	start := time.Now()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.cfg.Metrics.ObserveStage(name, "failed", time.Since(start))
		return fmt.Errorf("%s stage: %w", name, err)
	}
	s.cfg.Metrics.ObserveStage(name, "ok", time.Since(start))
	s.log.Debug("Stage completed", "stage", name)
	return nil
}

func (s *run) checkpoint(ctx context.Context, progress int, message string) error {
	return s.emitCheckpoint(ctx, Checkpoint{RunID: s.id, Progress: progress, Message: message})
}

func (s *run) emitCheckpoint(ctx context.Context, cp Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.emit(ctx, cp); err != nil {
		return fmt.Errorf("emit checkpoint %d: %w", cp.Progress, err)
	}
	return nil
}

func (s *run) prepare() {
	s.users = dataset.NewTable(dataset.TableUser, dataset.UserColumns...)
	s.courses = dataset.NewTable(dataset.TableCourse, dataset.CourseColumns...)
	s.resources = dataset.NewTable(dataset.TableResource, dataset.ResourceColumns...)
	s.categories = dataset.SeedCourseCategories()
	s.roles = dataset.SeedRoles()
}

func (s *run) keys(p Params) error {
	dataset.AllocatePrimaryKeys(s.log, s.users, p.Users)
	dataset.AllocatePrimaryKeys(s.log, s.courses, p.Courses)
	dataset.AllocatePrimaryKeys(s.log, s.resources, p.Resources)
	if err := firstFailure(
		dataset.Require(dataset.CheckPrimaryKeys(s.log, s.users), dataset.TableUser, "primary_keys", "invalid primary keys"),
		dataset.Require(dataset.CheckPrimaryKeys(s.log, s.courses), dataset.TableCourse, "primary_keys", "invalid primary keys"),
		dataset.Require(dataset.CheckPrimaryKeys(s.log, s.resources), dataset.TableResource, "primary_keys", "invalid primary keys"),
	); err != nil {
		return err
	}

	dataset.DistributeForeignKeys(s.log, s.courses, "category", s.categories.IDs(), s.rng)
	dataset.DistributeForeignKeys(s.log, s.resources, "course", s.courses.IDs(), s.rng)
	dataset.DistributeForeignKeys(s.log, s.resources, "uploaded_by", s.users.IDs(), s.rng)
	return firstFailure(
		dataset.Require(dataset.CheckForeignKeys(s.log, s.courses, "category", s.categories, "id"), dataset.TableCourse, "foreign_keys", "category not in course_categories"),
		dataset.Require(dataset.CheckForeignKeys(s.log, s.resources, "course", s.courses, "id"), dataset.TableResource, "foreign_keys", "course not in course"),
		dataset.Require(dataset.CheckForeignKeys(s.log, s.resources, "uploaded_by", s.users, "id"), dataset.TableResource, "foreign_keys", "uploaded_by not in user"),
	)
}

func (s *run) graph() error {
	s.contexts = dataset.BuildContext(s.courses, s.resources)
	s.roleAssignments = dataset.BuildRoleAssignments(s.log, s.contexts, s.resources, s.users, s.rng)
	return firstFailure(
		dataset.Require(dataset.CheckContext(s.log, s.contexts, s.courses, s.resources), dataset.TableContext, "hierarchy", "context rows must be one per course then one per resource"),
		dataset.Require(dataset.CheckRoleAssignments(s.log, s.roleAssignments, s.contexts, s.users), dataset.TableRoleAssignments, "references", "role assignments must cover every context with known users"),
	)
}

func (s *run) schema() error {
	fills := []struct {
		table  *dataset.Table
		schema dataset.Schema
	}{
		{s.users, dataset.UserSchema},
		{s.courses, dataset.CourseSchema},
		{s.resources, dataset.ResourceSchema},
		{s.contexts, dataset.ContextSchema},
		{s.roleAssignments, dataset.RoleAssignmentSchema},
	}
	for _, f := range fills {
		if err := dataset.FillFromSchema(s.log, f.table, f.schema, s.faker); err != nil {
			s.log.Warn("Schema rules skipped", "table", f.table.Name, "error", err)
		}
		if f.table == s.users {
			dataset.FillCoherentUsers(s.users, s.faker, s.cfg.EmailDomain)
		}
	}
	return dataset.Require(dataset.CheckRange(s.log, s.resources, "feedback_score", 1, 5), dataset.TableResource, "range", "feedback_score outside [1, 5]")
}

func (s *run) external(ctx context.Context) error {
	if s.cfg.Generator == nil {
		s.log.Warn("No text generator configured, semantic columns left empty")
		if err := s.checkpoint(ctx, progressExternal, "Text generation unavailable, semantic columns skipped"); err != nil {
			return err
		}
	} else {
		pipeline := generation.NewPipeline(s.cfg.Generator, s.log, s.cfg.Retry)
		steps := pipeline.Steps(s.courses, s.resources, s.categories)
		for i, step := range steps {
			progress := progressExternal
			if len(steps) > 1 {
				progress += i * (progressExtLast - progressExternal) / (len(steps) - 1)
			}
			if err := s.checkpoint(ctx, progress, fmt.Sprintf("Generating %s.%s", step.Table, step.Column)); err != nil {
				return err
			}
			if err := step.Run(ctx); err != nil {
				return fmt.Errorf("%s.%s: %w", step.Table, step.Column, err)
			}
		}
	}
	return firstFailure(
		dataset.Require(dataset.CheckRange(s.log, s.courses, "course_level", 1, 5), dataset.TableCourse, "range", "course_level outside [1, 5]"),
		dataset.Require(dataset.CheckRange(s.log, s.resources, "resource_level", 1, 5), dataset.TableResource, "range", "resource_level outside [1, 5]"),
	)
}

func (s *run) tagging(ctx context.Context) error {
	tagger := taxonomy.NewTagger(s.cfg.Generator, s.log, s.cfg.Retry)

	tags := taxonomy.BuildTagTable(s.cfg.TagMap)
	categoryTags, warnings := taxonomy.BuildCategoryTags(s.log, s.cfg.TagMap, s.categories, tags)
	if len(warnings) > 0 {
		s.log.Warn("Tag map entries skipped", "count", len(warnings), "first", warnings[0].Error())
	}
	courseTags, err := tagger.BuildCourseTags(ctx, s.courses, categoryTags, tags)
	if err != nil {
		return err
	}
	tags, resourceTags, err := tagger.BuildResourceTags(ctx, s.resources, tags)
	if err != nil {
		return err
	}
	s.tags, s.categoryTags, s.courseTags, s.resourceTags = tags, categoryTags, courseTags, resourceTags

	return firstFailure(
		dataset.Require(dataset.CheckUnique(s.log, s.tags, "name"), dataset.TableTag, "unique", "duplicate tag names"),
		dataset.Require(dataset.CheckForeignKeys(s.log, s.categoryTags, "tag_id", s.tags, "id"), dataset.TableCategoryTag, "foreign_keys", "tag_id not in tag"),
		dataset.Require(dataset.CheckForeignKeys(s.log, s.courseTags, "course_id", s.courses, "id"), dataset.TableCourseTag, "foreign_keys", "course_id not in course"),
		dataset.Require(dataset.CheckForeignKeys(s.log, s.courseTags, "tag_id", s.tags, "id"), dataset.TableCourseTag, "foreign_keys", "tag_id not in tag"),
		dataset.Require(dataset.CheckUniquePairs(s.log, s.courseTags, "course_id", "tag_id"), dataset.TableCourseTag, "unique", "duplicate course tags"),
		dataset.Require(dataset.CheckForeignKeys(s.log, s.resourceTags, "resource_id", s.resources, "id"), dataset.TableResourceTag, "foreign_keys", "resource_id not in resource"),
		dataset.Require(dataset.CheckForeignKeys(s.log, s.resourceTags, "tag_id", s.tags, "id"), dataset.TableResourceTag, "foreign_keys", "tag_id not in tag"),
		dataset.Require(dataset.CheckUniquePairs(s.log, s.resourceTags, "resource_id", "tag_id"), dataset.TableResourceTag, "unique", "duplicate resource tags"),
	)
}

func firstFailure(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// IsValidation reports whether err aborted a run because a validator failed.
func IsValidation(err error) bool {
	var ve *dataset.ValidationError
	return errors.As(err, &ve)
}
