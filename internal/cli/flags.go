package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/luoweipeter/coffea/internal/rules"
)

// ruleFlag is a repeatable pflag.Value that appends one rule entry per
// occurrence to a slice shared by all rule flags of a command. pflag calls
// Set in command-line order, so interleaved occurrences of different rule
// flags land in the shared slice exactly as declared.
type ruleFlag struct {
	kind  rules.Kind
	specs *[]rules.Spec
}

var _ pflag.Value = (*ruleFlag)(nil)

func (r *ruleFlag) String() string { return "" }

func (r *ruleFlag) Type() string { return "string" }

func (r *ruleFlag) Set(value string) error {
	*r.specs = append(*r.specs, rules.Spec{Kind: r.kind, Param: value})
	return nil
}

// registerRuleFlags adds the eight repeatable rule flags to a cobra command.
// All of them append to the same slice so declaration order survives parsing.
func registerRuleFlags(cmd *cobra.Command, specs *[]rules.Spec) {
	f := cmd.Flags()

	ruleKinds := []struct {
		kind  rules.Kind
		usage string
	}{
		{rules.KindIncludeRegexp, "keep nodes matching a start-anchored regexp (repeatable)"},
		{rules.KindExcludeRegexp, "drop nodes matching a start-anchored regexp (repeatable)"},
		{rules.KindIncludePrefix, "keep nodes with a literal identifier prefix (repeatable)"},
		{rules.KindExcludePrefix, "drop nodes with a literal identifier prefix (repeatable)"},
		{rules.KindIncludeList, "keep nodes named in a comma-separated list (repeatable)"},
		{rules.KindExcludeList, "drop nodes named in a comma-separated list (repeatable)"},
		{rules.KindRemovePrefix, "rewrite identifiers by removing the first occurrence of a string (repeatable)"},
		{rules.KindExtractPosition, "rewrite identifiers to the dot-separated segment at a zero-based index (repeatable)"},
	}

	for _, rk := range ruleKinds {
		f.Var(&ruleFlag{kind: rk.kind, specs: specs}, rk.kind.String(), rk.usage)
	}
}

// registerAnalysisFlags adds the shared graph construction flags to a cobra
// command.
func registerAnalysisFlags(cmd *cobra.Command, opts *analysisOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.mode, "mode", "m", "class", "aggregation mode: class, package")
	f.StringVar(&opts.nodeSize, "node-size", "", "node sizing metric for plots: class-size, unit-count")
	f.BoolVarP(&opts.removeExternal, "remove-external-connections", "r", false,
		"drop edges crossing the retained node set instead of creating external nodes")

	registerRuleFlags(cmd, &opts.ruleSpecs)
}
