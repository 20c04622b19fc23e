// Package queryengine filters parse results with CEL expressions.
//
// An expression sees one result at a time through these variables:
//
//	text      string              the matched text
//	index     int                 byte offset of the match
//	start     timestamp           resolved start
//	end       timestamp           resolved end; equal to start for single instants
//	is_range  bool                whether the match is a range
//	certain   map(string, bool)   per field, whether the text stated it at the start
//	tags      list(string)        provenance tags of the extractors involved
//
// For example: start.getFullYear() >= 2020 && certain["year"].
package queryengine

import (
	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"github.com/hrygo/datesense/plugin/calendar"
	"github.com/hrygo/datesense/plugin/datetext"
)

// Filter is a compiled boolean expression over one result. A Filter is safe
// for concurrent use.
type Filter struct {
	expr    string
	program cel.Program
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("text", cel.StringType),
		cel.Variable("index", cel.IntType),
		cel.Variable("start", cel.TimestampType),
		cel.Variable("end", cel.TimestampType),
		cel.Variable("is_range", cel.BoolType),
		cel.Variable("certain", cel.MapType(cel.StringType, cel.BoolType)),
		cel.Variable("tags", cel.ListType(cel.StringType)),
	)
}

// Compile parses and type-checks expr with the default config.
func Compile(expr string) (*Filter, error) {
	return CompileWithConfig(expr, DefaultConfig())
}

// CompileWithConfig parses and type-checks expr. The expression must
// evaluate to a bool.
func CompileWithConfig(expr string, config *Config) (*Filter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if expr == "" {
		return nil, errors.New("empty filter expression")
	}
	if len(expr) > config.MaxExpressionLength {
		return nil, errors.Errorf("filter expression longer than %d bytes", config.MaxExpressionLength)
	}

	env, err := newEnv()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create CEL environment")
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrap(issues.Err(), "failed to compile filter")
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, errors.Errorf("filter must evaluate to bool, got %s", ast.OutputType())
	}
	program, err := env.Program(ast, cel.CostLimit(config.CostLimit))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build filter program")
	}
	return &Filter{expr: expr, program: program}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}

// Match reports whether r satisfies the filter.
func (f *Filter) Match(r datetext.Result) (bool, error) {
	out, _, err := f.program.Eval(Vars(r))
	if err != nil {
		return false, errors.Wrapf(err, "failed to evaluate filter %q", f.expr)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, errors.Errorf("filter %q returned %T", f.expr, out.Value())
	}
	return matched, nil
}

// Apply returns the results that satisfy the filter, in their original order.
func (f *Filter) Apply(results []datetext.Result) ([]datetext.Result, error) {
	kept := make([]datetext.Result, 0, len(results))
	for _, r := range results {
		ok, err := f.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// Vars returns the CEL activation for r.
func Vars(r datetext.Result) map[string]any {
	certain := make(map[string]bool, len(calendar.Fields()))
	for _, field := range calendar.Fields() {
		certain[field.String()] = r.Start.IsCertain(field)
	}
	tags := r.Tags()
	if tags == nil {
		tags = []string{}
	}
	tr := r.TimeRange()
	return map[string]any{
		"text":     r.Text,
		"index":    int64(r.Index),
		"start":    tr.Start,
		"end":      tr.End,
		"is_range": r.IsRange(),
		"certain":  certain,
		"tags":     tags,
	}
}
