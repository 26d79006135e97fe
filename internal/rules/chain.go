package rules

import (
	"fmt"
	"log/slog"

	"github.com/luoweipeter/coffea/internal/graph"
)

// Chain is an ordered sequence of rules. Membership and order are fixed at
// construction; only the per-rule counters mutate afterwards. The chain is
// owned by the orchestrator and passed to the application step — the graph
// never owns it.
type Chain struct {
	rules []Rule
}

// Build translates the declared configuration entries into a Chain,
// preserving declaration order verbatim: no reordering, deduplication, or
// reconciliation of conflicting rules. Each rule binds its own copy of its
// parameter, so later entries can never retroactively change an earlier
// rule. An unknown kind is a configuration error.
func Build(specs []Spec, logger *slog.Logger) (*Chain, error) {
	if logger == nil {
		logger = slog.Default()
	}

	chain := &Chain{rules: make([]Rule, 0, len(specs))}

	for _, spec := range specs {
		rule, err := buildRule(spec, logger)
		if err != nil {
			return nil, err
		}

		chain.rules = append(chain.rules, rule)
		logger.Debug("rule configured", slog.String("rule", rule.String()))
	}

	return chain, nil
}

// buildRule constructs a single rule from its configuration entry. The
// switch is exhaustive over the closed kind set.
func buildRule(spec Spec, logger *slog.Logger) (Rule, error) {
	switch spec.Kind {
	case KindIncludeRegexp:
		return newRegexpFilter(spec.Param, false)
	case KindExcludeRegexp:
		return newRegexpFilter(spec.Param, true)
	case KindIncludePrefix:
		return newPrefixFilter(spec.Param, false), nil
	case KindExcludePrefix:
		return newPrefixFilter(spec.Param, true), nil
	case KindIncludeList:
		return newListFilter(spec.Param, false), nil
	case KindExcludeList:
		return newListFilter(spec.Param, true), nil
	case KindRemovePrefix:
		return newRemovePrefixMapper(spec.Param), nil
	case KindExtractPosition:
		return newExtractPositionMapper(spec.Param, logger)
	default:
		return nil, fmt.Errorf("unknown rule kind %q", spec.Kind)
	}
}

// Len returns the number of rules in the chain.
func (c *Chain) Len() int { return len(c.rules) }

// Rules returns the rules in declaration order, for counter reporting.
func (c *Chain) Rules() []Rule { return c.rules }

// Apply runs the chain over every node identifier of g in a single pass.
// Per node, rules run strictly in declaration order: a filter drop removes
// the node immediately and skips the remaining rules for that node, leaving
// its edges dangling for boundary resolution; a mapper rewrite replaces the
// identifier in place, and subsequent rules and all edge bookkeeping see the
// updated identifier.
func (c *Chain) Apply(g *graph.Graph) {
	if len(c.rules) == 0 {
		return
	}

	for _, id := range g.IDs() {
		// A rename may have merged this identifier into one processed
		// earlier in the pass.
		if !g.Has(id) {
			continue
		}

		current := id

		for _, rule := range c.rules {
			out, keep := rule.Apply(current)
			if !keep {
				g.Remove(current)
				break
			}

			if out != current {
				g.Rename(current, out)
				current = out
			}
		}
	}
}

// Report logs the final per-rule counters.
func (c *Chain) Report(logger *slog.Logger) {
	for _, rule := range c.rules {
		logger.Info("rule applied",
			slog.String("rule", rule.String()),
			slog.Int("affected", rule.Count()),
		)
	}
}
