package generation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/datasynth-backend/internal/dataset"
	"github.com/yungbote/datasynth-backend/internal/platform/logger"
	"github.com/yungbote/datasynth-backend/internal/platform/retry"
)

// MaxConsecutiveFailures fully failed batches in a row stop a column fill.
const MaxConsecutiveFailures = 3

// Projection computes a temporary column from a row. It must not mutate the row.
type Projection struct {
	Name string
	Fn   func(r dataset.Row) (any, error)
}

// Lookup projects ref.refColumn of the row in ref whose id equals the row's fk.
// Unknown ids project to nil.
func Lookup(name string, ref *dataset.Table, fk, refColumn string) Projection {
	index := make(map[int64]any, ref.Len())
	for _, r := range ref.Rows {
		if id, ok := dataset.AsInt(r["id"]); ok {
			if _, seen := index[id]; !seen {
				index[id] = r[refColumn]
			}
		}
	}
	return Projection{Name: name, Fn: func(r dataset.Row) (any, error) {
		id, ok := dataset.AsInt(r[fk])
		if !ok {
			return nil, nil
		}
		return index[id], nil
	}}
}

// Validator coerces raw answers. It returns one value per input; nil marks an
// invalid answer.
type Validator func(raw []string) ([]any, error)

// IntRange parses integers in [min, max]; anything else becomes nil.
func IntRange(min, max int64) Validator {
	return func(raw []string) ([]any, error) {
		out := make([]any, len(raw))
		for i, s := range raw {
			s = strings.TrimRight(strings.TrimSpace(s), ".")
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil || n < min || n > max {
				continue
			}
			out[i] = n
		}
		return out, nil
	}
}

type FillSpec struct {
	Target      string
	Template    string
	Projections []Projection
	BatchSize   int
	Validator   Validator
	// Sentinel overrides the pipeline's sentinel when set.
	Sentinel string
	// Temperature overrides the pipeline's temperature when > 0.
	Temperature float32
}

// Pipeline fills table columns through the external generator. It holds the
// generator handle and the call-site defaults.
type Pipeline struct {
	gen         Generator
	log         *logger.Logger
	policy      retry.Policy
	sentinel    string
	temperature float32
}

func NewPipeline(gen Generator, log *logger.Logger, policy retry.Policy) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		gen:         gen,
		log:         log.With("component", "GenerationPipeline"),
		policy:      policy,
		sentinel:    DefaultSentinel,
		temperature: DefaultTemperature,
	}
}

// Options returns the call options used for column fills, with temperature
// replaced when temp > 0.
func (p *Pipeline) Options(temp float32) Options {
	o := Options{Policy: p.policy, Temperature: p.temperature, Sentinel: p.sentinel, Log: p.log}
	if temp > 0 {
		o.Temperature = temp
	}
	return o
}

func (p *Pipeline) Generator() Generator { return p.gen }

// FillColumn generates fs.Target for every row of t, batch by batch. After
// MaxConsecutiveFailures fully failed batches it stops; rows after the last
// processed batch keep their previous value. Template, projection and count
// errors are fatal and leave the target column untouched.
func (p *Pipeline) FillColumn(ctx context.Context, t *dataset.Table, fs FillSpec) (err error) {
	ctx, span := otel.Tracer("datasynth/generation").Start(ctx, "generation.FillColumn")
	defer span.End()
	span.SetAttributes(
		attribute.String("table", t.Name),
		attribute.String("column", fs.Target),
		attribute.Int("rows", t.Len()),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
	}()

	size := fs.BatchSize
	if size <= 0 {
		size = 10
	}
	opts := p.Options(fs.Temperature)
	if fs.Sentinel != "" {
		opts.Sentinel = fs.Sentinel
	}

	tmpl, err := template.New(fs.Target).Option("missingkey=error").Parse(fs.Template)
	if err != nil {
		return fmt.Errorf("parse prompt for %s.%s: %w", t.Name, fs.Target, err)
	}

	var temp []string
	defer func() {
		for _, c := range temp {
			t.DropColumn(c)
		}
	}()
	for _, pr := range fs.Projections {
		if t.HasColumn(pr.Name) {
			return fmt.Errorf("projection %q shadows an existing column of %s", pr.Name, t.Name)
		}
		t.EnsureColumn(pr.Name)
		temp = append(temp, pr.Name)
		for i, r := range t.Rows {
			v, perr := pr.Fn(r)
			if perr != nil {
				return fmt.Errorf("projection %s on %s row %d: %w", pr.Name, t.Name, i, perr)
			}
			r[pr.Name] = v
		}
	}

	n := t.Len()
	results := make([]any, 0, n)
	processed := 0
	dispatched := 0
	failures := 0
	for start := 0; start < n; start += size {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		end := min(start+size, n)
		prompts := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			prompt, rerr := render(tmpl, t, t.Rows[i])
			if rerr != nil {
				return fmt.Errorf("render prompt for %s.%s row %d: %w", t.Name, fs.Target, i, rerr)
			}
			prompts = append(prompts, prompt)
		}

		res := CallBatch(ctx, p.gen, prompts, opts)
		dispatched += len(prompts)
		values := p.validate(fs, res.Values)
		results = append(results, values...)
		processed = end

		if !res.Failed {
			failures = 0
			continue
		}
		failures++
		if failures >= MaxConsecutiveFailures {
			p.log.Error("Too many failed batches, stopping column", "table", t.Name, "column", fs.Target, "processed", processed, "rows", n)
			break
		}
	}

	if len(results) != dispatched {
		return &dataset.GenerationIntegrityError{Table: t.Name, Column: fs.Target, Expected: dispatched, Got: len(results)}
	}
	t.EnsureColumn(fs.Target)
	for i := 0; i < processed; i++ {
		t.Rows[i][fs.Target] = results[i]
	}
	p.log.Info("Column generated", "table", t.Name, "column", fs.Target, "values", processed, "rows", n)
	return nil
}

func (p *Pipeline) validate(fs FillSpec, raw []string) []any {
	if fs.Validator == nil {
		out := make([]any, len(raw))
		for i, s := range raw {
			out[i] = s
		}
		return out
	}
	// A validator returning the wrong number of values is not padded here; the
	// count check in FillColumn turns it into an integrity error.
	values, err := fs.Validator(raw)
	if err != nil {
		p.log.Error("Validator failed, batch marked invalid", "column", fs.Target, "error", err)
		return make([]any, len(raw))
	}
	return values
}

func render(tmpl *template.Template, t *dataset.Table, r dataset.Row) (string, error) {
	data := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		data[c] = dataset.AsString(r[c])
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
