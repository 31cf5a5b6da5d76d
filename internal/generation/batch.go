package generation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/datasynth-backend/internal/observability"
	"github.com/yungbote/datasynth-backend/internal/platform/gemini"
	"github.com/yungbote/datasynth-backend/internal/platform/logger"
	"github.com/yungbote/datasynth-backend/internal/platform/retry"
)

// Generator is the slice of the external text service the pipeline needs.
// gemini.Client satisfies it; tests pass fakes.
type Generator interface {
	GenerateText(ctx context.Context, req gemini.Request) (string, error)
}

const (
	DefaultSentinel    = "N/A"
	DefaultTemperature = float32(1.7)
)

// Options configure one external call site.
type Options struct {
	Policy      retry.Policy
	Temperature float32
	Sentinel    string
	Log         *logger.Logger
}

func (o Options) sentinel() string {
	if o.Sentinel == "" {
		return DefaultSentinel
	}
	return o.Sentinel
}

func (o Options) log() *logger.Logger {
	if o.Log == nil {
		return logger.Nop()
	}
	return o.Log
}

// Complete sends one prompt under the retry policy. On exhaustion the error is
// an *ExternalServiceError; callers substitute their own fallback.
func Complete(ctx context.Context, gen Generator, op, prompt string, opts Options) (string, error) {
	if gen == nil {
		return "", &ExternalServiceError{Op: op, Err: gemini.ErrNotConfigured}
	}
	out := retry.Do(ctx, opts.Policy, opts.Log, op, func(ctx context.Context) (string, error) {
		return gen.GenerateText(ctx, gemini.Request{Prompt: prompt, Temperature: opts.Temperature})
	})
	if !out.OK() {
		observability.Current().ObserveExternalBatch(op, "failed")
		return "", &ExternalServiceError{Op: op, Attempts: out.Attempts, Err: out.Err}
	}
	observability.Current().ObserveExternalBatch(op, "ok")
	return out.Value, nil
}

const batchHeader = "Stai generando valori per una colonna di una tabella CSV. " +
	"Ogni blocco numerato rappresenta una richiesta. " +
	"Rispondi con un solo valore per ciascuna richiesta, numerato da 1 a N. " +
	"Tutti i valori devono essere diversi tra loro: evita ripetizioni, varia lo stile e il contenuto. " +
	"Non aggiungere spiegazioni, introduzioni, commenti o testo extra. " +
	"Rispondi solo con i valori richiesti, uno per riga, nel formato:\n" +
	"1. <valore>\n2. <valore>\n...\n\n" +
	"Ecco le richieste:\n\n"

// NumberedList renders prompts as "1. ...\n2. ..." in order.
func NumberedList(prompts []string) string {
	var b strings.Builder
	for i, p := range prompts {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(p)
	}
	return b.String()
}

// BatchResult always holds exactly one value per prompt. Failed is set when
// every value is the sentinel.
type BatchResult struct {
	Values []string
	Failed bool
	Err    error
}

// CallBatch asks for one answer per prompt in a single request and aligns the
// numbered reply with the prompts.
func CallBatch(ctx context.Context, gen Generator, prompts []string, opts Options) BatchResult {
	if len(prompts) == 0 {
		return BatchResult{}
	}
	ctx, span := otel.Tracer("datasynth/generation").Start(ctx, "generation.CallBatch")
	defer span.End()
	span.SetAttributes(attribute.Int("batch.size", len(prompts)))

	log := opts.log()
	sentinel := opts.sentinel()

	text, err := Complete(ctx, gen, "generation.CallBatch", batchHeader+NumberedList(prompts), opts)
	if err != nil {
		span.RecordError(err)
		log.Warn("Batch degraded to sentinel", "size", len(prompts), "error", err)
		return BatchResult{Values: repeat(sentinel, len(prompts)), Failed: true, Err: err}
	}

	answers := ParseNumbered(text)
	if len(answers) == 0 {
		log.Warn("No numbered answers in reply", "size", len(prompts))
		return BatchResult{Values: repeat(sentinel, len(prompts)), Failed: true}
	}
	if len(answers) < len(prompts) {
		log.Warn("Incomplete batch, padding", "expected", len(prompts), "got", len(answers))
		answers = append(answers, repeat(sentinel, len(prompts)-len(answers))...)
	}
	answers = answers[:len(prompts)]

	failed := true
	for _, a := range answers {
		if a != sentinel {
			failed = false
			break
		}
	}
	span.SetAttributes(attribute.Bool("batch.failed", failed))
	return BatchResult{Values: answers, Failed: failed}
}

// ParseNumbered keeps lines that start with a digit and contain a period,
// returning the trimmed text after the first period.
func ParseNumbered(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] < '0' || line[0] > '9' {
			continue
		}
		_, value, ok := strings.Cut(line, ".")
		if !ok {
			continue
		}
		out = append(out, strings.TrimSpace(value))
	}
	return out
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// ExternalServiceError is recovered locally: logged, then replaced by the
// sentinel or an empty list.
type ExternalServiceError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s failed after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
