package calendar

import "time"

// Span locates matched text in the original input.
type Span struct {
	// Index is the byte offset of the match.
	Index int
	// Text is the matched text; its length is the match length.
	Text string
}

// Length returns the byte length of the match.
func (s Span) Length() int {
	return len(s.Text)
}

// RangeResult links the two ends of an "A to B" expression. Start is not
// required to precede End.
type RangeResult struct {
	Span
	Start ResolvedInstant
	End   ResolvedInstant
}

// ResolveRange resolves start and end against the same reference. Fields
// assigned in start but unset in end are implied into a copy of end first,
// so "10:00 to 07:00" after a full date shares that date. Neither input is
// modified.
//
// The end follows wherever the start resolved to. A time-only end takes the
// start's resolved day, and an end without a year takes the start's resolved
// year; only in the latter case, with an uncertain start year, may the
// forward-date policy still move the end past the reference.
func ResolveRange(start, end *Components, ref time.Time, opts Options) (RangeResult, error) {
	s, err := Resolve(start, ref, opts)
	if err != nil {
		return RangeResult{}, err
	}

	following := propagate(start, end)
	endOpts := opts
	switch {
	case end.IsOnlyTime():
		ImplySimilarDate(following, s.Time)
		endOpts.ForwardDate = false
	case !end.IsCertain(FieldYear):
		if start.IsCertain(FieldYear) {
			endOpts.ForwardDate = false
		} else {
			following.reimply(FieldYear, s.Time.Year())
		}
	}

	e, err := Resolve(following, ref, endOpts)
	if err != nil {
		return RangeResult{}, err
	}

	return RangeResult{Start: s, End: e}, nil
}

// propagate returns a copy of end carrying start's certain fields as implied.
func propagate(start, end *Components) *Components {
	out := end.Clone()
	for f := FieldYear; f < numFields; f++ {
		if start.IsCertain(f) && !out.IsSet(f) {
			out.Imply(f, start.Value(f))
		}
	}
	return out
}
