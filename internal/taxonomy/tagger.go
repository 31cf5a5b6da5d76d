package taxonomy

import (
	"context"
	"encoding/json"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/datasynth-backend/internal/dataset"
	"github.com/yungbote/datasynth-backend/internal/generation"
	"github.com/yungbote/datasynth-backend/internal/platform/logger"
	"github.com/yungbote/datasynth-backend/internal/platform/retry"
)

const (
	BatchSize = 25

	MaxCourseTags   = 7
	MaxResourceTags = 3

	selectionTemperature = float32(0.7)
	freeformTemperature  = float32(0.3)
	introRunes           = 300
)

// Tagger links courses and resources to tags through the external generator.
type Tagger struct {
	gen    generation.Generator
	log    *logger.Logger
	policy retry.Policy
}

func NewTagger(gen generation.Generator, log *logger.Logger, policy retry.Policy) *Tagger {
	if log == nil {
		log = logger.Nop()
	}
	return &Tagger{gen: gen, log: log.With("component", "Tagger"), policy: policy}
}

func (tg *Tagger) options(temp float32) generation.Options {
	return generation.Options{Policy: tg.policy, Temperature: temp, Log: tg.log}
}

const selectionHeader = "Per ciascuna richiesta, scegli solo tra i tag elencati. " +
	"Non inventare nuovi tag. Rispondi con una lista di tag separati da virgola, senza commenti.\n\n" +
	"Ecco le richieste:\n\n"

// CallSelection returns one tag list per prompt, in order. Failed batches
// yield empty lists.
func (tg *Tagger) CallSelection(ctx context.Context, prompts []string) [][]string {
	return tg.batched(ctx, "taxonomy.CallSelection", prompts, selectionTemperature, func(batch []string) string {
		return selectionHeader + generation.NumberedList(batch)
	}, func(text string, n int) [][]string {
		return ParseSelection(text)
	})
}

const freeformHeader = "Genera da 1 a 3 tag sintetici per ciascuna risorsa. " +
	"Rispondi SOLO in formato JSON valido, senza testo aggiuntivo, come lista di liste di stringhe.\n" +
	"Esempio di output valido:\n" +
	`[["tag1", "tag2"], ["tag3"], ["tag4", "tag5", "tag6"]]` + "\n\n" +
	"Ora genera i tag per queste risorse:\n"

// CallFreeform asks for a JSON array of tag arrays, one per prompt.
func (tg *Tagger) CallFreeform(ctx context.Context, prompts []string) [][]string {
	return tg.batched(ctx, "taxonomy.CallFreeform", prompts, freeformTemperature, func(batch []string) string {
		return freeformHeader + generation.NumberedList(batch)
	}, ParseFreeform)
}

func (tg *Tagger) batched(
	ctx context.Context,
	op string,
	prompts []string,
	temp float32,
	build func(batch []string) string,
	parse func(text string, n int) [][]string,
) [][]string {
	ctx, span := otel.Tracer("datasynth/taxonomy").Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.Int("prompts", len(prompts)))

	out := make([][]string, 0, len(prompts))
	for start := 0; start < len(prompts); start += BatchSize {
		end := min(start+BatchSize, len(prompts))
		batch := prompts[start:end]

		var lists [][]string
		text, err := generation.Complete(ctx, tg.gen, op, build(batch), tg.options(temp))
		if err != nil {
			tg.log.Warn("Tag batch failed, using empty lists", "op", op, "from", start, "to", end-1, "error", err)
		} else {
			lists = parse(text, len(batch))
			if len(lists) == 0 {
				tg.log.Warn("No tag lists in reply", "op", op, "from", start, "to", end-1)
			}
		}
		out = append(out, align(lists, len(batch))...)
	}
	return out
}

// align pads with empty lists or truncates so there is one list per prompt.
func align(lists [][]string, n int) [][]string {
	out := make([][]string, n)
	for i := range out {
		if i < len(lists) && lists[i] != nil {
			out[i] = lists[i]
		} else {
			out[i] = []string{}
		}
	}
	return out
}

// ParseSelection reads "N. a, b", "N: a, b" or "N- a, b" lines. When the reply
// has no numbered line at all, each non-empty line counts as one list.
func ParseSelection(text string) [][]string {
	var numbered, loose [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line[0] >= '0' && line[0] <= '9' {
			rest := strings.TrimLeft(line, "0123456789")
			rest = strings.TrimSpace(rest)
			if rest == "" || !strings.ContainsRune(".:-", rune(rest[0])) {
				continue
			}
			numbered = append(numbered, splitTags(rest[1:]))
			continue
		}
		if tags := splitTags(line); len(tags) > 0 {
			loose = append(loose, tags)
		}
	}
	if len(numbered) > 0 {
		return numbered
	}
	return loose
}

func splitTags(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseFreeform decodes a JSON array of string arrays, falling back to the
// text between the first '[' and the last ']'. Anything else yields n empty lists.
func ParseFreeform(text string, n int) [][]string {
	text = strings.TrimSpace(text)
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		i, j := strings.Index(text, "["), strings.LastIndex(text, "]")
		if i < 0 || j <= i {
			return align(nil, n)
		}
		if err := json.Unmarshal([]byte(text[i:j+1]), &raw); err != nil {
			return align(nil, n)
		}
	}
	items, ok := raw.([]any)
	if !ok {
		return align(nil, n)
	}
	lists := make([][]string, len(items))
	for k, item := range items {
		tags, ok := item.([]any)
		if !ok {
			continue
		}
		var clean []string
		for _, tag := range tags {
			if s := strings.TrimSpace(dataset.AsString(tag)); s != "" {
				clean = append(clean, s)
			}
			if len(clean) == MaxResourceTags {
				break
			}
		}
		lists[k] = clean
	}
	return align(lists, n)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
