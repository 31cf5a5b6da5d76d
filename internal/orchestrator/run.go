package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/datasynth-backend/internal/dataset"
	"github.com/yungbote/datasynth-backend/internal/generation"
	"github.com/yungbote/datasynth-backend/internal/observability"
	"github.com/yungbote/datasynth-backend/internal/platform/logger"
	"github.com/yungbote/datasynth-backend/internal/platform/retry"
	"github.com/yungbote/datasynth-backend/internal/taxonomy"
)

const DefaultMaxRows = 5000

var ErrInvalidParams = errors.New("invalid run parameters")

// Params are the requested row counts. MaxRows is filled in by the runner.
// Resources need at least one course and one user to reference, and courses
// need a user to own them.
type Params struct {
	Users     int `json:"n_utenti" form:"n_utenti" validate:"required_with=Courses Resources,gte=0,ltefield=MaxRows"`
	Courses   int `json:"n_corsi" form:"n_corsi" validate:"required_with=Resources,gte=0,ltefield=MaxRows"`
	Resources int `json:"n_risorse" form:"n_risorse" validate:"gte=0,ltefield=MaxRows"`

	MaxRows int `json:"-" form:"-" validate:"gte=1"`
}

// Checkpoint is one progress record. Exactly one record of a successful run
// has Progress 100, and it carries the result.
type Checkpoint struct {
	RunID    string   `json:"run_id"`
	Progress int      `json:"progress"`
	Message  string   `json:"message"`
	Result   *Dataset `json:"result,omitempty"`
}

// Emit delivers a checkpoint. A non-nil error aborts the run.
type Emit func(ctx context.Context, cp Checkpoint) error

type Config struct {
	// Generator may be nil; the external columns are then left empty.
	Generator   generation.Generator
	Log         *logger.Logger
	Retry       retry.Policy
	TagMap      taxonomy.TagMap
	Seed        uint64
	EmailDomain string
	MaxRows     int
	Store       *ResultStore
	Now         func() time.Time
	// Metrics defaults to the process-wide collector, which may be nil.
	Metrics *observability.Metrics
}

type Runner struct {
	cfg      Config
	log      *logger.Logger
	validate *validator.Validate
}

func NewRunner(cfg Config) *Runner {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.TagMap == nil {
		cfg.TagMap = taxonomy.DefaultTagMap()
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = DefaultMaxRows
	}
	if cfg.EmailDomain == "" {
		cfg.EmailDomain = dataset.DefaultEmailDomain
	}
	if cfg.Store == nil {
		cfg.Store = NewResultStore()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.Current()
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Default()
	}
	return &Runner{cfg: cfg, log: cfg.Log.With("component", "Orchestrator"), validate: validator.New()}
}

func (r *Runner) Store() *ResultStore { return r.cfg.Store }

// Validate checks the counts against the configured maximum.
func (r *Runner) Validate(p Params) error {
	p.MaxRows = r.cfg.MaxRows
	if err := r.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// Run builds all eleven tables, validating after every stage. The dataset is
// published to the store right before the final checkpoint.
func (r *Runner) Run(ctx context.Context, p Params, emit Emit) (*Dataset, error) {
	if err := r.Validate(p); err != nil {
		return nil, err
	}
	if emit == nil {
		emit = func(context.Context, Checkpoint) error { return nil }
	}

	runID := uuid.NewString()
	seed := r.cfg.Seed
	if seed == 0 {
		seed = uint64(r.cfg.Now().UnixNano())
	}
	log := r.log.With("run_id", runID)

	ctx, span := otel.Tracer("datasynth/orchestrator").Start(ctx, "orchestrator.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", runID),
		attribute.Int("users", p.Users),
		attribute.Int("courses", p.Courses),
		attribute.Int("resources", p.Resources),
	)

	s := &run{
		Runner: r,
		id:     runID,
		log:    log,
		emit:   emit,
		rng:    dataset.NewRand(seed),
		faker:  dataset.NewFaker(seed),
	}
	s.faker.Now = r.cfg.Now

	start := r.cfg.Now()
	log.Info("Dataset generation started", "users", p.Users, "courses", p.Courses, "resources", p.Resources, "seed", seed)

	out, err := s.execute(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		status := "failed"
		if errors.Is(err, context.Canceled) {
			status = "canceled"
		}
		r.cfg.Metrics.ObserveRun(status, r.cfg.Now().Sub(start))
		log.Error("Dataset generation failed", "error", err)
		return nil, err
	}
	r.cfg.Metrics.ObserveRun("succeeded", r.cfg.Now().Sub(start))
	for _, t := range out.Ordered() {
		r.cfg.Metrics.AddRows(t.Name, t.Len())
	}
	log.Info("Dataset generated and validated", "duration", r.cfg.Now().Sub(start).String())
	return out, nil
}

// run carries the state of one execution.
type run struct {
	*Runner
	id    string
	log   *logger.Logger
	emit  Emit
	rng   *rand.Rand
	faker *dataset.Faker

	users, courses, resources      *dataset.Table
	contexts, roleAssignments      *dataset.Table
	categories, roles              *dataset.Table
	tags, categoryTags, courseTags *dataset.Table
	resourceTags                   *dataset.Table
}
