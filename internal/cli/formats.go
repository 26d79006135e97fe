package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luoweipeter/coffea/internal/output"
)

func newFormatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List supported serialization formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range output.DefaultRegistry().Formats() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}

			return nil
		},
	}

	return cmd
}
