package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List or toggle the artwork sources",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every source with its enabled state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			flags := a.settings.Flags(ctx)
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tENABLED\tNAME")
			for _, src := range a.registry.All() {
				fmt.Fprintf(w, "%s\t%t\t%s\n", src.ShortCode(), flags[src.ShortCode()], src.Name())
			}
			return w.Flush()
		})
	},
}

var sourcesEnableCmd = &cobra.Command{
	Use:   "enable <code>",
	Short: "Enable a source by short code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleSource(cmd.Context(), args[0], true)
	},
}

var sourcesDisableCmd = &cobra.Command{
	Use:   "disable <code>",
	Short: "Disable a source by short code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleSource(cmd.Context(), args[0], false)
	},
}

func toggleSource(parent context.Context, code string, enabled bool) error {
	return withApp(parent, func(ctx context.Context, a *app) error {
		if _, err := a.settings.SetFlag(ctx, code, enabled); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s: enabled=%t\n", code, enabled)
		return nil
	})
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesEnableCmd)
	sourcesCmd.AddCommand(sourcesDisableCmd)
}
