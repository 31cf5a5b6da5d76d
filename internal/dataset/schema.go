package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/yungbote/datasynth-backend/internal/platform/logger"
)

type GeneratorKind int

const (
	GenConstant GeneratorKind = iota + 1
	GenChoice
	GenFake
	GenFloatRange
	GenNull
)

func (k GeneratorKind) String() string {
	switch k {
	case GenConstant:
		return "constant"
	case GenChoice:
		return "choice"
	case GenFake:
		return "fake"
	case GenFloatRange:
		return "float_range"
	case GenNull:
		return "null"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FakeKind names a semantic type the faker knows how to produce.
type FakeKind string

const (
	FakeWord       FakeKind = "word"
	FakeInteger    FakeKind = "integer"
	FakeBoolean    FakeKind = "boolean"
	FakeEmail      FakeKind = "email"
	FakeFirstName  FakeKind = "first_name"
	FakeLastName   FakeKind = "last_name"
	FakeUsername   FakeKind = "username"
	FakePassword   FakeKind = "password"
	FakePhone      FakeKind = "phone"
	FakeInstitute  FakeKind = "institution"
	FakeDepartment FakeKind = "department"
	FakeAddress    FakeKind = "address"
	FakeCity       FakeKind = "city"
	FakeCountry    FakeKind = "country"
	FakeIP         FakeKind = "ip"
	FakeTimestamp  FakeKind = "timestamp"
)

// Generator describes how one column is filled. Build it with Constant,
// Choice, Fake, FloatRange or Null.
type Generator struct {
	Kind     GeneratorKind
	Value    any
	Values   []any
	Fake     FakeKind
	Min      float64
	Max      float64
	Decimals int
}

func Constant(v any) Generator       { return Generator{Kind: GenConstant, Value: v} }
func Choice(values ...any) Generator { return Generator{Kind: GenChoice, Values: values} }
func Fake(kind FakeKind) Generator   { return Generator{Kind: GenFake, Fake: kind} }
func Null() Generator                { return Generator{Kind: GenNull} }

func FloatRange(min, max float64, decimals int) Generator {
	return Generator{Kind: GenFloatRange, Min: min, Max: max, Decimals: decimals}
}

type ColumnRule struct {
	Column    string
	Generator Generator
}

// Schema is applied in order, one column at a time.
type Schema []ColumnRule

// Faker produces pseudorandom realistic values. Seeded fakers are reproducible
// as long as Now is fixed too.
type Faker struct {
	f   *gofakeit.Faker
	Now func() time.Time
}

// NewFaker returns a faker seeded with seed, or randomly seeded when seed is 0.
func NewFaker(seed uint64) *Faker {
	return &Faker{f: gofakeit.New(seed), Now: time.Now}
}

const timestampWindow = 5 * 365 * 24 * time.Hour

func (fk *Faker) value(kind FakeKind) (any, bool) {
	f := fk.f
	switch kind {
	case FakeWord:
		return f.Word(), true
	case FakeInteger:
		return int64(f.IntRange(0, 100)), true
	case FakeBoolean:
		return f.Bool(), true
	case FakeEmail:
		return f.Email(), true
	case FakeFirstName:
		return f.FirstName(), true
	case FakeLastName:
		return f.LastName(), true
	case FakeUsername:
		return f.Username(), true
	case FakePassword:
		sum := sha256.Sum256([]byte(f.UUID()))
		return "$2y$" + hex.EncodeToString(sum[:])[3:], true
	case FakePhone:
		return f.Phone(), true
	case FakeInstitute:
		return f.Company(), true
	case FakeDepartment:
		return f.BS(), true
	case FakeAddress:
		return f.Address().Address, true
	case FakeCity:
		return f.City(), true
	case FakeCountry:
		return f.Country(), true
	case FakeIP:
		return f.IPv4Address(), true
	case FakeTimestamp:
		now := fk.Now()
		return f.DateRange(now.Add(-timestampWindow), now).Unix(), true
	}
	return nil, false
}

func (fk *Faker) column(table string, rule ColumnRule, n int) ([]any, error) {
	g := rule.Generator
	out := make([]any, n)
	switch g.Kind {
	case GenConstant:
		for i := range out {
			out[i] = g.Value
		}
	case GenNull:
		// already nil
	case GenChoice:
		if len(g.Values) == 0 {
			return nil, &ConfigurationError{Table: table, Column: rule.Column, Reason: "choice with no values"}
		}
		for i := range out {
			out[i] = g.Values[fk.f.IntRange(0, len(g.Values)-1)]
		}
	case GenFloatRange:
		if g.Min > g.Max || g.Decimals < 0 {
			return nil, &ConfigurationError{Table: table, Column: rule.Column, Reason: fmt.Sprintf("bad float range [%v,%v] decimals=%d", g.Min, g.Max, g.Decimals)}
		}
		scale := math.Pow(10, float64(g.Decimals))
		for i := range out {
			v := fk.f.Float64Range(g.Min, g.Max)
			out[i] = math.Min(g.Max, math.Max(g.Min, math.Round(v*scale)/scale))
		}
	case GenFake:
		if _, ok := fk.value(g.Fake); !ok {
			return nil, &ConfigurationError{Table: table, Column: rule.Column, Reason: fmt.Sprintf("unknown fake kind %q", g.Fake)}
		}
		for i := range out {
			out[i], _ = fk.value(g.Fake)
		}
	default:
		return nil, &ConfigurationError{Table: table, Column: rule.Column, Reason: "unknown generator " + g.Kind.String()}
	}
	return out, nil
}

// FillFromSchema applies every rule to every row. A rule that cannot be applied
// leaves its column untouched; the other rules still run and the failures are
// returned joined.
func FillFromSchema(log *logger.Logger, t *Table, schema Schema, faker *Faker) error {
	log = orNop(log)
	if faker == nil {
		faker = NewFaker(0)
	}
	var errs []error
	for _, rule := range schema {
		values, err := faker.column(t.Name, rule, t.Len())
		if err != nil {
			log.Error("Schema rule skipped", "table", t.Name, "column", rule.Column, "error", err)
			errs = append(errs, err)
			continue
		}
		t.EnsureColumn(rule.Column)
		for i, r := range t.Rows {
			r[rule.Column] = values[i]
		}
	}
	return errors.Join(errs...)
}

const DefaultEmailDomain = "example.com"

// FillCoherentUsers overwrites firstname, lastname, username and email so that
// username is "first.last" lowercased and email is username@domain.
func FillCoherentUsers(t *Table, faker *Faker, domain string) {
	if faker == nil {
		faker = NewFaker(0)
	}
	domain = strings.TrimSpace(domain)
	if domain == "" {
		domain = DefaultEmailDomain
	}
	for _, c := range []string{"firstname", "lastname", "username", "email"} {
		t.EnsureColumn(c)
	}
	for _, r := range t.Rows {
		first := faker.f.FirstName()
		last := faker.f.LastName()
		username := strings.ToLower(first) + "." + strings.ToLower(last)
		r["firstname"] = first
		r["lastname"] = last
		r["username"] = username
		r["email"] = username + "@" + domain
	}
}
