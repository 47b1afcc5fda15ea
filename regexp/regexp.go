// Package regexp implements the ECMAScript RegExp flavor: it parses
// pattern+flags and capture-group topology itself, then delegates
// backtracking match execution to github.com/dlclark/regexp2 (§4.4) — the
// same division of labor goja uses (own front end, regexp2 backend, see
// _examples/other_examples/dop251-goja__builtin_regexp.go).
package regexp

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/scriptkit/ecma/jserr"
)

// Flags is the parsed form of a RegExp literal/constructor's flag string.
type Flags struct {
	Global     bool // g
	IgnoreCase bool // i
	Multiline  bool // m
	Sticky     bool // y
	Unicode    bool // u
	DotAll     bool // s
}

func (f Flags) String() string {
	var b strings.Builder
	if f.Global {
		b.WriteByte('g')
	}
	if f.IgnoreCase {
		b.WriteByte('i')
	}
	if f.Multiline {
		b.WriteByte('m')
	}
	if f.DotAll {
		b.WriteByte('s')
	}
	if f.Unicode {
		b.WriteByte('u')
	}
	if f.Sticky {
		b.WriteByte('y')
	}
	return b.String()
}

// ParseFlags validates a flag string and rejects duplicates, per the
// RegExp constructor's SyntaxError-on-bad-flags contract.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	for _, c := range s {
		var target *bool
		switch c {
		case 'g':
			target = &f.Global
		case 'i':
			target = &f.IgnoreCase
		case 'm':
			target = &f.Multiline
		case 'y':
			target = &f.Sticky
		case 'u':
			target = &f.Unicode
		case 's':
			target = &f.DotAll
		default:
			return Flags{}, jserr.NewSyntaxError("invalid regular expression flag %q", c)
		}
		if *target {
			return Flags{}, jserr.NewSyntaxError("duplicate regular expression flag %q", c)
		}
		*target = true
	}
	return f, nil
}

// Compiled is a pattern+flags pair bound to a backtracking matcher, plus
// the capture-group name topology the ECMAScript layer needs (named
// groups, group count) that regexp2 itself only exposes by index/name at
// match time.
type Compiled struct {
	Source     string
	Flags      Flags
	GroupNames []string // index 0 is the whole match, "" for unnamed groups
	re         *regexp2.Regexp
}

// Compile builds a Compiled matcher for pattern+flags, translating the
// ECMAScript flag set to regexp2's RegexOptions.
func Compile(pattern string, flags Flags) (*Compiled, error) {
	opts := regexp2.None
	if flags.IgnoreCase {
		opts |= regexp2.IgnoreCase
	}
	if flags.Multiline {
		opts |= regexp2.Multiline
	}
	if flags.DotAll {
		opts |= regexp2.Singleline
	}
	if flags.Unicode {
		opts |= regexp2.Unicode
	}

	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, jserr.NewSyntaxError("invalid regular expression: %s", err.Error())
	}

	names := make([]string, len(re.GetGroupNames()))
	for _, n := range re.GetGroupNames() {
		if idx := re.GroupNumberFromName(n); idx >= 0 && idx < len(names) {
			if _, isNumeric := indexOrEmpty(n); !isNumeric {
				names[idx] = n
			}
		}
	}

	return &Compiled{Source: pattern, Flags: flags, GroupNames: names, re: re}, nil
}

func indexOrEmpty(s string) (int, bool) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// Group is one capture group of a match: Start/End are rune offsets into
// the subject (-1/-1 when the group did not participate), Value is the
// captured text.
type Group struct {
	Name         string
	Start, End   int
	Value        string
	Participated bool
}

// MatchResult is the result of running a Compiled pattern against a
// subject starting at some offset, the shape `exec`/`match`/`Symbol.match`
// all build on (§4.4 data model).
type MatchResult struct {
	Index  int // rune offset of the whole match
	Input  string
	Groups []Group // Groups[0] is the whole match
}

// ExecSub runs the pattern against input starting the search at
// fromIndex (a rune offset), implementing the core of RegExp.prototype.exec
// without touching lastIndex — callers (global's RegExp builtin) own the
// global/sticky lastIndex bookkeeping described in §4.4's edge cases.
func (c *Compiled) ExecSub(input string, fromIndex int) (*MatchResult, error) {
	runes := []rune(input)
	if fromIndex < 0 {
		fromIndex = 0
	}
	if fromIndex > len(runes) {
		return nil, nil
	}

	search := string(runes[fromIndex:])
	m, err := c.re.FindStringMatch(search)
	if err != nil {
		return nil, jserr.NewEvaluatorError("regexp execution failed: %s", err.Error())
	}
	if m == nil {
		return nil, nil
	}
	if c.Flags.Sticky && m.Index != 0 {
		return nil, nil
	}

	groups := make([]Group, len(m.Groups()))
	for i, g := range m.Groups() {
		grp := Group{Start: -1, End: -1}
		if i < len(c.GroupNames) {
			grp.Name = c.GroupNames[i]
		}
		if len(g.Captures) > 0 {
			lastCap := g.Captures[len(g.Captures)-1]
			grp.Start = fromIndex + lastCap.Index
			grp.End = grp.Start + lastCap.Length
			grp.Value = lastCap.String()
			grp.Participated = true
		}
		groups[i] = grp
	}

	return &MatchResult{Index: fromIndex + m.Index, Input: input, Groups: groups}, nil
}

// MatchAll implements Symbol.matchAll's iteration: repeatedly execs with
// a forced-global semantics regardless of the pattern's own Global flag,
// advancing past empty matches by one rune to avoid looping forever.
func (c *Compiled) MatchAll(input string) ([]*MatchResult, error) {
	var results []*MatchResult
	runes := []rune(input)
	pos := 0
	for pos <= len(runes) {
		res, err := c.ExecSub(input, pos)
		if err != nil {
			return nil, err
		}
		if res == nil {
			break
		}
		results = append(results, res)
		whole := res.Groups[0]
		if whole.End == whole.Start {
			pos = whole.End + 1
		} else {
			pos = whole.End
		}
	}
	return results, nil
}

// Search implements Symbol.search: the rune index of the first match, or
// -1.
func (c *Compiled) Search(input string) (int, error) {
	res, err := c.ExecSub(input, 0)
	if err != nil {
		return -1, err
	}
	if res == nil {
		return -1, nil
	}
	return res.Index, nil
}

// ExpandReplacement substitutes $1..$9, $&, $`, $', and $<name> in
// replacement against a match result, per String.prototype.replace's
// GetSubstitution algorithm.
func ExpandReplacement(replacement string, input string, res *MatchResult) string {
	var b strings.Builder
	runes := []rune(replacement)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '$' || i+1 >= len(runes) {
			b.WriteRune(c)
			continue
		}
		next := runes[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '&':
			b.WriteString(res.Groups[0].Value)
			i++
		case next == '`':
			b.WriteString(string([]rune(input)[:res.Index]))
			i++
		case next == '\'':
			whole := res.Groups[0]
			b.WriteString(string([]rune(input)[whole.End:]))
			i++
		case next >= '1' && next <= '9':
			idx := int(next - '0')
			j := i + 2
			if j < len(runes) && runes[j] >= '0' && runes[j] <= '9' {
				twoDigit := idx*10 + int(runes[j]-'0')
				if twoDigit < len(res.Groups) {
					idx = twoDigit
					j++
				}
			}
			if idx < len(res.Groups) {
				b.WriteString(res.Groups[idx].Value)
				i = j - 1
			} else {
				b.WriteRune(c)
			}
		case next == '<':
			end := indexOfRune(runes, '>', i+2)
			if end < 0 {
				b.WriteRune(c)
				continue
			}
			name := string(runes[i+2 : end])
			b.WriteString(groupByName(res, name))
			i = end
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func indexOfRune(rs []rune, target rune, from int) int {
	for i := from; i < len(rs); i++ {
		if rs[i] == target {
			return i
		}
	}
	return -1
}

func groupByName(res *MatchResult, name string) string {
	for _, g := range res.Groups {
		if g.Name == name {
			return g.Value
		}
	}
	return ""
}

// Legacy is the RegExp constructor's static $1..$9/$&/$`/$' properties,
// updated after every successful match (the SUPPLEMENTED-FEATURES legacy
// statics Rhino carries and the distilled spec calls out as kept).
type Legacy struct {
	LastMatch, LastParen, LeftContext, RightContext string
	Captures                                        [9]string
}

// RecordLegacy updates l from a successful match, mirroring what the
// RegExp constructor's static fields are expected to reflect after any
// exec/test/match call. fromIndex is the rune offset the search started
// at (0 for a non-global exec). version12LeftContext selects language
// version 1.2's interpretation of leftContext — only the substring
// skipped between fromIndex and the match, not the whole prefix from the
// start of the string — which every later version uses instead (§4.4
// step 5, testable property #10).
func (l *Legacy) RecordLegacy(input string, fromIndex int, res *MatchResult, version12LeftContext bool) {
	if res == nil {
		return
	}
	runes := []rune(input)
	l.LastMatch = res.Groups[0].Value
	if version12LeftContext {
		l.LeftContext = string(runes[fromIndex:res.Index])
	} else {
		l.LeftContext = string(runes[:res.Index])
	}
	l.RightContext = string(runes[res.Groups[0].End:])
	for i := 1; i < len(res.Groups) && i <= 9; i++ {
		l.Captures[i-1] = res.Groups[i].Value
	}
	if len(res.Groups) > 1 {
		l.LastParen = res.Groups[len(res.Groups)-1].Value
	}
}

func (l *Legacy) Dollar(n int) string {
	if n < 1 || n > 9 {
		return ""
	}
	return l.Captures[n-1]
}
