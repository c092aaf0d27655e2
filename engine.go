package rematch

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

///////////////////////////////////////////////////////////////////////////////
// Engine Interface
///////////////////////////////////////////////////////////////////////////////

// Engine compiles pattern sources into Matchers.
type Engine interface {
	// Compile turns a pattern source into a Matcher.
	Compile(source string) (Matcher, error)
	// Name returns a unique identifier for this engine.
	Name() string
}

// Matcher is the compiled form of a pattern. Implementations must be
// safe for concurrent use once built.
type Matcher interface {
	// FindCaptures searches the input anywhere (not anchored) and returns
	// the capture groups of the leftmost match. Group i is the i-th group
	// by position of its opening parenthesis in the pattern. A non-nil
	// error means the search itself failed, which is not a mismatch.
	FindCaptures(input string) (Captures, bool, error)
	// NumGroups returns the number of capture groups, excluding group 0.
	NumGroups() int
}

// Captures holds the capture groups of one match. Index 0 is the whole
// match. A group that did not participate in the match is absent.
type Captures struct {
	texts   []string
	present []bool
}

// NewCaptures builds Captures from parallel text/presence slices.
func NewCaptures(texts []string, present []bool) Captures {
	return Captures{texts: texts, present: present}
}

// Len returns the number of groups including group 0.
func (c Captures) Len() int {
	return len(c.texts)
}

// Group returns the text of group i and whether it participated.
func (c Captures) Group(i int) (string, bool) {
	if i < 0 || i >= len(c.texts) || !c.present[i] {
		return "", false
	}
	return c.texts[i], true
}

///////////////////////////////////////////////////////////////////////////////
// StdEngine
///////////////////////////////////////////////////////////////////////////////

// StdEngine compiles patterns with the standard library's RE2 engine.
// It is the default engine.
type StdEngine struct{}

func NewStdEngine() StdEngine {
	return StdEngine{}
}

func (StdEngine) Name() string {
	return StdEngineName
}

func (StdEngine) Compile(source string) (Matcher, error) {
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, err
	}
	return &stdMatcher{re: re}, nil
}

type stdMatcher struct {
	re *regexp.Regexp
}

func (m *stdMatcher) FindCaptures(input string) (Captures, bool, error) {
	loc := m.re.FindStringSubmatchIndex(input)
	if loc == nil {
		return Captures{}, false, nil
	}

	n := len(loc) / 2
	texts := make([]string, n)
	present := make([]bool, n)
	for i := 0; i < n; i++ {
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 {
			continue
		}
		texts[i] = input[start:end]
		present[i] = true
	}
	return NewCaptures(texts, present), true, nil
}

func (m *stdMatcher) NumGroups() int {
	return m.re.NumSubexp()
}

///////////////////////////////////////////////////////////////////////////////
// Regexp2Engine
///////////////////////////////////////////////////////////////////////////////

var ErrGroupOrder = errors.New("cannot determine capture group order")

// Regexp2Engine compiles patterns with github.com/dlclark/regexp2, a
// backtracking engine supporting look-around and backreferences.
//
// regexp2 numbers unnamed groups before named ones. Matchers renumber the
// groups by the position of their opening parenthesis, as the std engine
// does, so field binding does not depend on which groups are named. A
// pattern whose group order cannot be recovered (duplicate names, inline
// explicit-capture options) is rejected with ErrGroupOrder.
type Regexp2Engine struct {
	Options regexp2.RegexOptions

	// Timeout bounds a single search. Zero means no timeout, whatever
	// regexp2.DefaultMatchTimeout is set to. A search that times out is
	// reported as an error, not as a mismatch.
	Timeout time.Duration
}

// NewRegexp2Engine returns a regexp2 engine with the given options.
// Pass regexp2.RE2 to get RE2-compatible syntax.
func NewRegexp2Engine(opts regexp2.RegexOptions) Regexp2Engine {
	return Regexp2Engine{Options: opts}
}

func (Regexp2Engine) Name() string {
	return Regexp2EngineName
}

func (e Regexp2Engine) Compile(source string) (Matcher, error) {
	re, err := regexp2.Compile(source, e.Options)
	if err != nil {
		return nil, err
	}

	re.MatchTimeout = time.Duration(math.MaxInt64)
	if e.Timeout > 0 {
		re.MatchTimeout = e.Timeout
	}

	order, err := groupOrder(re, captureNames(source, e.Options))
	if err != nil {
		return nil, fmt.Errorf("%w in %q: %v", ErrGroupOrder, source, err)
	}
	return &regexp2Matcher{re: re, order: order}, nil
}

type regexp2Matcher struct {
	re    *regexp2.Regexp
	order []int // regexp2 group number per positional group, order[0] == 0
}

func (m *regexp2Matcher) FindCaptures(input string) (Captures, bool, error) {
	match, err := m.re.FindStringMatch(input)
	if err != nil {
		return Captures{}, false, err
	}
	if match == nil {
		return Captures{}, false, nil
	}

	texts := make([]string, len(m.order))
	present := make([]bool, len(m.order))
	for i, num := range m.order {
		g := match.GroupByNumber(num)
		if g == nil || len(g.Captures) == 0 {
			continue
		}
		texts[i] = g.String()
		present[i] = true
	}
	return NewCaptures(texts, present), true, nil
}

func (m *regexp2Matcher) NumGroups() int {
	return len(m.order) - 1
}

// captureNames lists the capturing groups of a regexp2 pattern in the
// order their opening parentheses appear. Unnamed groups are listed by
// their number, which is how regexp2 names them.
func captureNames(source string, opts regexp2.RegexOptions) []string {
	explicit := opts&regexp2.ExplicitCapture != 0
	freeSpacing := opts&regexp2.IgnorePatternWhitespace != 0

	var names []string
	unnamed := 0
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\\':
			i++
		case '[':
			i = skipCharClass(source, i)
		case '#':
			if freeSpacing {
				for i < len(source) && source[i] != '\n' {
					i++
				}
			}
		case '(':
			rest := source[i+1:]
			switch {
			case strings.HasPrefix(rest, "?#"):
				end := strings.IndexByte(rest, ')')
				if end < 0 {
					return names
				}
				i += end + 1
			case strings.HasPrefix(rest, "?<=") || strings.HasPrefix(rest, "?<!"):
				// look-behind
			case strings.HasPrefix(rest, "?<") || strings.HasPrefix(rest, "?'"):
				if name := groupName(rest[2:]); name != "" {
					names = append(names, name)
				}
			case strings.HasPrefix(rest, "?P<"):
				if name := groupName(rest[3:]); name != "" {
					names = append(names, name)
				}
			case strings.HasPrefix(rest, "?"):
				// non-capturing group, look-ahead or inline options
			case !explicit:
				unnamed++
				names = append(names, strconv.Itoa(unnamed))
			}
		}
	}
	return names
}

// groupName returns the name of a named group given the text after its
// opening delimiter. Balancing groups without a name yield "".
func groupName(rest string) string {
	end := strings.IndexAny(rest, ">'-")
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// skipCharClass returns the index of the ']' closing the class opened at i.
func skipCharClass(source string, i int) int {
	j := i + 1
	if j < len(source) && source[j] == '^' {
		j++
	}
	if j < len(source) && source[j] == ']' {
		j++
	}
	for ; j < len(source); j++ {
		switch source[j] {
		case '\\':
			j++
		case '[':
			if source[j-1] == '-' {
				j = skipCharClass(source, j)
			}
		case ']':
			return j
		}
	}
	return len(source)
}

// groupOrder maps positional groups to regexp2 group numbers. names must
// cover every group of re exactly once.
func groupOrder(re *regexp2.Regexp, names []string) ([]int, error) {
	numbers := re.GetGroupNumbers()
	if len(names) != len(numbers)-1 {
		return nil, fmt.Errorf("found %d groups, regexp2 has %d", len(names), len(numbers)-1)
	}

	valid := make(map[int]bool, len(numbers))
	for _, n := range numbers[1:] {
		valid[n] = true
	}

	order := make([]int, 1, len(numbers))
	for _, name := range names {
		n := re.GroupNumberFromName(name)
		if !valid[n] {
			return nil, fmt.Errorf("group %q is ambiguous", name)
		}
		delete(valid, n)
		order = append(order, n)
	}
	return order, nil
}

///////////////////////////////////////////////////////////////////////////////
// Engine lookup
///////////////////////////////////////////////////////////////////////////////

// EngineByName returns a built in engine by name.
func EngineByName(name string) (Engine, error) {
	switch name {
	case "", StdEngineName:
		return NewStdEngine(), nil
	case Regexp2EngineName:
		return NewRegexp2Engine(regexp2.None), nil
	default:
		return nil, fmt.Errorf("unknown regex engine %q", name)
	}
}
