package datetext

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/hrygo/datesense/plugin/calendar"
	"github.com/hrygo/datesense/server/timezone"
)

// Provenance tags attached to component sets.
const (
	TagSlashDate = "parser/SlashDateFormatParser"
	TagTime      = "parser/TimeExpressionParser"
	TagCasual    = "parser/CasualDateParser"
	TagRelative  = "parser/RelativeDurationParser"
	TagRange     = "refiner/MergeDateRangeRefiner"
)

const (
	meridiemPattern = `((?:am|pm)\b|a\.m\.|p\.m\.)`
	clockPattern    = `(\d{1,2})(?::(\d{2})(?::(\d{2})(?:\.(\d{1,3}))?)?)?(?:\s*` + meridiemPattern + `)?`
	unitPattern     = `milliseconds?|msecs?|ms|seconds?|secs?|minutes?|mins?|hours?|hrs?|days?|weeks?|wks?|months?|mos?|quarters?|qtrs?|years?|yrs?`
)

var (
	numberPattern       = `\d+|` + alternation(numberWords)
	durationPartPattern = `(?:` + numberPattern + `)\s+(?:` + unitPattern + `)\b`
	durationChain       = durationPartPattern + `(?:\s*,?\s*(?:and\s+)?` + durationPartPattern + `)*`
)

// Patterns for candidate extraction
var (
	// [weekday] d/m/y with /, . or - separators; the second token may be a month name.
	slashDatePattern = regexp.MustCompile(`(?i)(?:(` + alternation(weekdayNames) + `)\.?\s*,?\s+)?` +
		`(\d{1,4})[/.\-](\d{1,4}|` + alternation(monthNames) + `)(?:[/.\-](\d{1,4}))?(?:[/.\-](\d{1,4}))?`)

	// A clock time directly after another match: ", 09:15 AM", " at 12pm", "T10:00", ":06:36:02".
	timeSuffixPattern = regexp.MustCompile(`(?i)^(?:\s*,?\s*(?:at\s+)?|T|:)` + clockPattern)

	// A standalone clock time: "10:00", "7pm", "at 9:30 a.m.".
	timePattern = regexp.MustCompile(`(?i)(?:\bat\s+)?` + clockPattern)

	// A UTC offset after a date or time: " +0200", " GMT+2", "Z", " UTC".
	offsetPattern = regexp.MustCompile(`(?i)^(?:\s*((?:GMT|UTC)\s*[+-]\d{1,2}(?::?\d{2})?)|\s+([+-]\d{2}:?\d{2})|\s*((?-i:Z)|UTC|GMT)\b)`)

	casualPattern = regexp.MustCompile(`(?i)\b(now|today|tonight|tomorrow|yesterday)\b`)

	relativeFuturePattern = regexp.MustCompile(`(?i)\b(?:in|within)\s+(` + durationChain + `)`)
	relativePastPattern   = regexp.MustCompile(`(?i)\b(` + durationChain + `)\s+(ago|later|hence|from\s+now)\b`)
	durationPartRe        = regexp.MustCompile(`(?i)(` + numberPattern + `)\s+(` + unitPattern + `)\b`)

	rangeConnectorPattern = regexp.MustCompile(`(?i)^\s*(?:-|–|—|~|to|until|till|through|thru)\s*$`)
	fromPrefixPattern     = regexp.MustCompile(`(?i)\bfrom\s+$`)
)

// candidate is an extracted but not yet composed match.
type candidate struct {
	calendar.Span
	set *calendar.Components
}

func (c candidate) end() int {
	return c.Index + len(c.Text)
}

// extractor finds candidates of one kind.
type extractor struct {
	tag string
	// casual extractors are disabled in strict mode.
	casual bool
	run    func(p *Parser, text string, ref time.Time) []candidate
}

var extractors = []extractor{
	{tag: TagSlashDate, run: (*Parser).extractSlashDates},
	{tag: TagTime, run: (*Parser).extractTimes},
	{tag: TagCasual, casual: true, run: (*Parser).extractCasual},
	{tag: TagRelative, casual: true, run: (*Parser).extractRelative},
}

// Parser extracts and resolves date expressions for one configuration.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	order       calendar.DateOrder
	strict      bool
	forwardDate bool
}

// NewParser creates a parser for opts.
func NewParser(opts Options) *Parser {
	return &Parser{
		order:       DateOrderFor(opts.Locale),
		strict:      opts.Strict,
		forwardDate: opts.ForwardDate,
	}
}

// Parse finds every expression in text and resolves it against ref.
//
// Candidates that do not resolve to a real date are dropped; of two
// overlapping candidates the earlier, then the longer, wins. Adjacent
// candidates joined by a range connector become one range result.
func (p *Parser) Parse(ctx context.Context, text string, ref time.Time) ([]Result, error) {
	var found []candidate
	for _, ex := range extractors {
		if ex.casual && p.strict {
			continue
		}
		cands := ex.run(p, text, ref)
		if len(cands) > 0 {
			slog.Debug("datetext: extracted candidates", "extractor", ex.tag, "count", len(cands))
		}
		found = append(found, cands...)
	}

	opts := calendar.Options{ForwardDate: p.forwardDate}
	valid := found[:0]
	for _, c := range found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := calendar.Resolve(c.set, ref, opts); err != nil {
			slog.Debug("datetext: discarding candidate", "text", c.Text, "index", c.Index, "error", err)
			continue
		}
		valid = append(valid, c)
	}

	return p.compose(ctx, text, dropOverlaps(valid), ref, opts)
}

// compose turns candidates into results, joining ranges.
func (p *Parser) compose(ctx context.Context, text string, cands []candidate, ref time.Time, opts calendar.Options) ([]Result, error) {
	results := make([]Result, 0, len(cands))
	for i := 0; i < len(cands); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := cands[i]

		if i+1 < len(cands) && rangeConnectorPattern.MatchString(text[c.end():cands[i+1].Index]) {
			if r, ok := composeRange(text, c, cands[i+1], ref, opts); ok {
				results = append(results, r)
				i++
				continue
			}
		}

		start, err := calendar.Resolve(c.set, ref, opts)
		if err != nil {
			continue
		}
		results = append(results, Result{Span: c.Span, Start: start})
	}
	return results, nil
}

func composeRange(text string, a, b candidate, ref time.Time, opts calendar.Options) (Result, bool) {
	start := a.set.Clone().AddTag(TagRange)
	end := b.set.Clone().AddTag(TagRange)

	rr, err := calendar.ResolveRange(start, end, ref, opts)
	if err != nil {
		slog.Debug("datetext: range did not resolve", "start", a.Text, "end", b.Text, "error", err)
		return Result{}, false
	}

	index := a.Index
	if loc := fromPrefixPattern.FindStringIndex(text[:a.Index]); loc != nil {
		index = loc[0]
	}
	endInstant := rr.End
	return Result{
		Span:  calendar.Span{Index: index, Text: text[index:b.end()]},
		Start: rr.Start,
		End:   &endInstant,
	}, true
}

// dropOverlaps keeps the earliest, then longest, of overlapping candidates.
func dropOverlaps(cands []candidate) []candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Index != cands[j].Index {
			return cands[i].Index < cands[j].Index
		}
		return len(cands[i].Text) > len(cands[j].Text)
	})

	out := cands[:0]
	last := 0
	for _, c := range cands {
		if c.Index < last {
			continue
		}
		out = append(out, c)
		last = c.end()
	}
	return out
}

func (p *Parser) extractSlashDates(text string, _ time.Time) []candidate {
	resolver := calendar.OrderResolver{Order: p.order, Strict: p.strict}

	var out []candidate
	for pos := 0; pos < len(text); {
		loc := slashDatePattern.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		shift(loc, pos)
		start, end := loc[0], loc[1]
		if !boundaryBefore(text, start) {
			pos = nextRune(text, start)
			continue
		}

		set, err := slashDate(text, loc, resolver)
		if err != nil && group(text, loc, 5) != "" && len(group(text, loc, 4)) == 4 {
			// "8/10/2012-8/15/2012": the fourth token belongs to the next date.
			loc[10], loc[11] = -1, -1
			end = loc[9]
			set, err = slashDate(text, loc, resolver)
		}
		if err != nil {
			slog.Debug("datetext: numeric date rejected", "text", text[start:end], "error", err)
			pos = end
			continue
		}

		set, end = suffixes(text, end, set)
		if !boundaryAfter(text, end) {
			pos = end
			continue
		}

		set.AddTag(TagSlashDate)
		out = append(out, candidate{Span: calendar.Span{Index: start, Text: text[start:end]}, set: set})
		pos = end
	}
	return out
}

// slashDate classifies the matched tokens and resolves their order.
func slashDate(text string, loc []int, r calendar.OrderResolver) (*calendar.Components, error) {
	tokens := make([]calendar.Token, 0, 4)
	for g := 2; g <= 5; g++ {
		raw := group(text, loc, g)
		if raw == "" {
			continue
		}
		if m, ok := lookupMonth(raw); ok {
			tokens = append(tokens, calendar.MonthToken(raw, m))
			continue
		}
		tok, err := calendar.NumericToken(raw)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}

	set, err := r.Resolve(tokens)
	if err != nil {
		return nil, err
	}
	if wd, ok := lookupWeekday(group(text, loc, 1)); ok {
		set.Assign(calendar.FieldWeekday, wd)
	}
	return set, nil
}

func (p *Parser) extractTimes(text string, _ time.Time) []candidate {
	var out []candidate
	for pos := 0; pos < len(text); {
		loc := timePattern.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		shift(loc, pos)
		start := loc[0]

		cl, ok := clockFrom(text, loc)
		if !ok || !boundaryBefore(text, start) || precededBy(text, start, ":/.") {
			pos = nextRune(text, start)
			continue
		}

		set := calendar.NewComponents()
		cl.assignTo(set)
		end := offsetSuffix(text, loc[1], set)
		if !boundaryAfter(text, end) {
			pos = nextRune(text, start)
			continue
		}

		set.AddTag(TagTime)
		out = append(out, candidate{Span: calendar.Span{Index: start, Text: text[start:end]}, set: set})
		pos = end
	}
	return out
}

func (p *Parser) extractCasual(text string, ref time.Time) []candidate {
	var out []candidate
	for _, loc := range casualPattern.FindAllStringSubmatchIndex(text, -1) {
		word := strings.ToLower(group(text, loc, 1))
		end := loc[1]
		set := calendar.NewComponents()

		if word == "now" {
			calendar.AssignSimilarDate(set, ref)
			calendar.AssignSimilarTime(set, ref)
			set.AddTag(TagCasual)
			out = append(out, candidate{Span: calendar.Span{Index: loc[0], Text: text[loc[0]:end]}, set: set})
			continue
		}

		cl, n, hasClock := matchClock(text[end:])
		if word == "tomorrow" && !hasClock {
			calendar.AssignTheNextDay(set, ref)
		} else {
			day := ref
			switch word {
			case "tomorrow":
				day = ref.AddDate(0, 0, 1)
			case "yesterday":
				day = ref.AddDate(0, 0, -1)
			}
			calendar.AssignSimilarDate(set, day)

			switch {
			case hasClock:
				set = withClock(set, cl)
				end += n
			case word == "tonight":
				set.Imply(calendar.FieldHour, 22)
			default:
				calendar.ImplySimilarTime(set, ref)
			}
		}

		set.AddTag(TagCasual)
		out = append(out, candidate{Span: calendar.Span{Index: loc[0], Text: text[loc[0]:end]}, set: set})
	}
	return out
}

func (p *Parser) extractRelative(text string, ref time.Time) []candidate {
	var out []candidate
	for _, loc := range relativeFuturePattern.FindAllStringSubmatchIndex(text, -1) {
		d, ok := parseDuration(group(text, loc, 1))
		if !ok {
			continue
		}
		out = append(out, relativeCandidate(text, loc[0], loc[1], d, ref))
	}
	for _, loc := range relativePastPattern.FindAllStringSubmatchIndex(text, -1) {
		d, ok := parseDuration(group(text, loc, 1))
		if !ok {
			continue
		}
		if strings.EqualFold(group(text, loc, 2), "ago") {
			d = d.Reverse()
		}
		out = append(out, relativeCandidate(text, loc[0], loc[1], d, ref))
	}
	return out
}

func relativeCandidate(text string, start, end int, d calendar.Duration, ref time.Time) candidate {
	// A clock-only shift can still cross midnight, so the date is derived too.
	if onlyClock(d) {
		d[calendar.UnitDay] = 0
	}

	set := calendar.NewComponents()
	if cl, n, ok := matchClock(text[end:]); ok {
		cl.assignTo(set)
		set.AddTag(TagTime)
		end += n
	}
	set = calendar.ApplyDuration(set, ref, d).AddTag(TagRelative)
	return candidate{Span: calendar.Span{Index: start, Text: text[start:end]}, set: set}
}

// parseDuration reads "2 days, 3 hours" into a Duration.
func parseDuration(s string) (calendar.Duration, bool) {
	d := calendar.Duration{}
	for _, m := range durationPartRe.FindAllStringSubmatch(s, -1) {
		n, ok := numberWords[strings.ToLower(m[1])]
		if !ok {
			var err error
			if n, err = strconv.Atoi(m[1]); err != nil {
				return nil, false
			}
		}
		u, ok := calendar.ParseUnit(m[2])
		if !ok {
			return nil, false
		}
		d[u] += n
	}
	return d, len(d) > 0
}

func onlyClock(d calendar.Duration) bool {
	for u := range d {
		switch u {
		case calendar.UnitHour, calendar.UnitMinute, calendar.UnitSecond, calendar.UnitMillisecond:
		default:
			return false
		}
	}
	return true
}

// clock is a parsed time of day in 24-hour form.
type clock struct {
	hour, minute, second, millisecond int

	hasMinute, hasSecond, hasMillisecond bool

	meridiem    int
	hasMeridiem bool
}

// clockFrom reads the clock groups 1..5 of a clockPattern match. A bare
// number without minutes or a meridiem is not a time.
func clockFrom(text string, loc []int) (clock, bool) {
	var c clock
	c.hour, _ = strconv.Atoi(group(text, loc, 1))
	if s := group(text, loc, 2); s != "" {
		c.minute, _ = strconv.Atoi(s)
		c.hasMinute = true
	}
	if s := group(text, loc, 3); s != "" {
		c.second, _ = strconv.Atoi(s)
		c.hasSecond = true
	}
	if s := group(text, loc, 4); s != "" {
		for len(s) < 3 {
			s += "0"
		}
		c.millisecond, _ = strconv.Atoi(s)
		c.hasMillisecond = true
	}
	if s := group(text, loc, 5); s != "" {
		c.hasMeridiem = true
		c.meridiem = calendar.AM
		if s[0] == 'p' || s[0] == 'P' {
			c.meridiem = calendar.PM
		}
	}

	if !c.hasMinute && !c.hasMeridiem {
		return c, false
	}
	if c.minute > 59 || c.second > 59 {
		return c, false
	}
	if !c.hasMeridiem {
		return c, c.hour <= 23
	}
	if c.hour < 1 || c.hour > 12 {
		return c, false
	}
	switch {
	case c.meridiem == calendar.PM && c.hour < 12:
		c.hour += 12
	case c.meridiem == calendar.AM && c.hour == 12:
		c.hour = 0
	}
	return c, true
}

func (c clock) assignTo(set *calendar.Components) {
	set.Assign(calendar.FieldHour, c.hour)
	if c.hasMinute {
		set.Assign(calendar.FieldMinute, c.minute)
	}
	if c.hasSecond {
		set.Assign(calendar.FieldSecond, c.second)
	}
	if c.hasMillisecond {
		set.Assign(calendar.FieldMillisecond, c.millisecond)
	}
	if c.hasMeridiem {
		set.Assign(calendar.FieldMeridiem, c.meridiem)
	}
}

// matchClock matches a clock time at the start of s and returns its length.
func matchClock(s string) (clock, int, bool) {
	loc := timeSuffixPattern.FindStringSubmatchIndex(s)
	if loc == nil {
		return clock{}, 0, false
	}
	c, ok := clockFrom(s, loc)
	if !ok || !(boundaryAfter(s, loc[1]) || offsetPattern.MatchString(s[loc[1]:])) {
		return clock{}, 0, false
	}
	return c, loc[1], true
}

// suffixes extends a date match with a trailing clock time and UTC offset.
// It returns the merged set and the new end.
func suffixes(text string, end int, set *calendar.Components) (*calendar.Components, int) {
	if c, n, ok := matchClock(text[end:]); ok {
		set = withClock(set, c)
		end += n
	}
	return set, offsetSuffix(text, end, set)
}

// withClock merges a clock time, parsed on its own, into a date set.
func withClock(date *calendar.Components, c clock) *calendar.Components {
	timeSet := calendar.NewComponents().AddTag(TagTime)
	c.assignTo(timeSet)
	if err := date.ConflictsWith(timeSet); err != nil {
		slog.Debug("datetext: clock overrides date fields", "error", err)
	}
	return date.Merge(timeSet)
}

// offsetSuffix assigns a trailing UTC offset, if any, and returns the new end.
func offsetSuffix(text string, end int, set *calendar.Components) int {
	loc := offsetPattern.FindStringSubmatchIndex(text[end:])
	if loc == nil {
		return end
	}
	raw := ""
	for g := 1; g <= 3 && raw == ""; g++ {
		raw = group(text[end:], loc, g)
	}
	minutes, err := timezone.ParseOffset(raw)
	if err != nil {
		slog.Debug("datetext: ignoring utc offset", "text", raw, "error", err)
		return end
	}
	set.Assign(calendar.FieldTimezoneOffset, minutes)
	return end + loc[1]
}

// group returns submatch g, or "" if it did not participate.
func group(text string, loc []int, g int) string {
	if 2*g+1 >= len(loc) || loc[2*g] < 0 {
		return ""
	}
	return text[loc[2*g]:loc[2*g+1]]
}

// shift rebases submatch indexes found in text[pos:].
func shift(loc []int, pos int) {
	for i := range loc {
		if loc[i] >= 0 {
			loc[i] += pos
		}
	}
}

func nextRune(text string, i int) int {
	_, size := utf8.DecodeRuneInString(text[i:])
	return i + max(size, 1)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func precededBy(text string, i int, chars string) bool {
	return i > 0 && strings.IndexByte(chars, text[i-1]) >= 0
}
