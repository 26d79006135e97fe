package rules

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// EmptyIdentifier is the sentinel substituted when a rewrite produces an
// empty string.
const EmptyIdentifier = "[empty]"

// Rule is a single configured filter or mapper over a node identifier.
// Each rule binds a copy of its parameter at construction time and owns a
// counter: filters count dropped identifiers, mappers count every
// identifier they process. The counter is instrumentation only.
type Rule interface {
	// Apply evaluates the rule. keep reports whether the node survives;
	// when it does, out is the (possibly rewritten) identifier.
	Apply(id string) (out string, keep bool)

	// Count returns how many identifiers the rule affected.
	Count() int

	// String describes the configured rule for diagnostics.
	String() string
}

// ---------------------------------------------------------------------------
// Predicate filters
// ---------------------------------------------------------------------------

// regexpFilter keeps or drops nodes by a start-anchored pattern match. The
// pattern is compiled with a \A anchor so it must match at the beginning of
// the identifier, but need not consume all of it. A mid-string match is
// never a match.
type regexpFilter struct {
	pattern string
	re      *regexp.Regexp
	exclude bool
	count   int
}

func newRegexpFilter(pattern string, exclude bool) (*regexpFilter, error) {
	re, err := regexp.Compile(`\A(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	return &regexpFilter{pattern: pattern, re: re, exclude: exclude}, nil
}

func (f *regexpFilter) Apply(id string) (string, bool) {
	keep := f.re.MatchString(id) != f.exclude
	if !keep {
		f.count++
	}

	return id, keep
}

func (f *regexpFilter) Count() int { return f.count }

func (f *regexpFilter) String() string {
	return fmt.Sprintf("%s(%s)", kindName(KindIncludeRegexp, KindExcludeRegexp, f.exclude), f.pattern)
}

// prefixFilter keeps or drops nodes by a literal string prefix.
type prefixFilter struct {
	prefix  string
	exclude bool
	count   int
}

func newPrefixFilter(prefix string, exclude bool) *prefixFilter {
	return &prefixFilter{prefix: prefix, exclude: exclude}
}

func (f *prefixFilter) Apply(id string) (string, bool) {
	keep := strings.HasPrefix(id, f.prefix) != f.exclude
	if !keep {
		f.count++
	}

	return id, keep
}

func (f *prefixFilter) Count() int { return f.count }

func (f *prefixFilter) String() string {
	return fmt.Sprintf("%s(%s)", kindName(KindIncludePrefix, KindExcludePrefix, f.exclude), f.prefix)
}

// listFilter keeps or drops nodes by exact membership in a configured set.
// The parameter is a comma-separated list of identifiers.
type listFilter struct {
	raw     string
	members map[string]struct{}
	exclude bool
	count   int
}

func newListFilter(raw string, exclude bool) *listFilter {
	members := make(map[string]struct{})

	for _, m := range strings.Split(raw, ",") {
		m = strings.TrimSpace(m)
		if m != "" {
			members[m] = struct{}{}
		}
	}

	return &listFilter{raw: raw, members: members, exclude: exclude}
}

func (f *listFilter) Apply(id string) (string, bool) {
	_, member := f.members[id]

	keep := member != f.exclude
	if !keep {
		f.count++
	}

	return id, keep
}

func (f *listFilter) Count() int { return f.count }

func (f *listFilter) String() string {
	return fmt.Sprintf("%s(%s)", kindName(KindIncludeList, KindExcludeList, f.exclude), f.raw)
}

// ---------------------------------------------------------------------------
// Mappers
// ---------------------------------------------------------------------------

// removePrefixMapper removes the first occurrence of a literal string from
// the identifier. This is a substring replace, not a positional prefix
// strip: an occurrence inside the identifier is removed too. An identifier
// that becomes empty is replaced with EmptyIdentifier.
type removePrefixMapper struct {
	prefix string
	count  int
}

func newRemovePrefixMapper(prefix string) *removePrefixMapper {
	return &removePrefixMapper{prefix: prefix}
}

func (m *removePrefixMapper) Apply(id string) (string, bool) {
	m.count++

	out := strings.Replace(id, m.prefix, "", 1)
	if out == "" {
		out = EmptyIdentifier
	}

	return out, true
}

func (m *removePrefixMapper) Count() int { return m.count }

func (m *removePrefixMapper) String() string {
	return fmt.Sprintf("%s(%s)", KindRemovePrefix, m.prefix)
}

// extractPositionMapper rewrites the identifier to its dot-separated segment
// at a zero-based index. An out-of-range index leaves the identifier
// unchanged and logs a warning; processing continues.
type extractPositionMapper struct {
	index  int
	logger *slog.Logger
	count  int
}

func newExtractPositionMapper(param string, logger *slog.Logger) (*extractPositionMapper, error) {
	index, err := strconv.Atoi(param)
	if err != nil || index < 0 {
		return nil, fmt.Errorf("invalid position %q: must be a non-negative integer", param)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &extractPositionMapper{index: index, logger: logger}, nil
}

func (m *extractPositionMapper) Apply(id string) (string, bool) {
	m.count++

	parts := strings.Split(id, ".")
	if m.index >= len(parts) {
		m.logger.Warn("extract position out of range, identifier unchanged",
			slog.String("identifier", id),
			slog.Int("position", m.index),
			slog.Int("segments", len(parts)),
		)

		return id, true
	}

	return parts[m.index], true
}

func (m *extractPositionMapper) Count() int { return m.count }

func (m *extractPositionMapper) String() string {
	return fmt.Sprintf("%s(%d)", KindExtractPosition, m.index)
}

// kindName picks the include or exclude kind name for a filter pair.
func kindName(include, exclude Kind, isExclude bool) string {
	if isExclude {
		return exclude.String()
	}

	return include.String()
}
