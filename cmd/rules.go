package cmd

import (
	"fmt"

	"chatledger/internal/domain/rules"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// newRulesCmd creates and returns the rules command group.
func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the classification rule tables",
	}
	cmd.AddCommand(newRulesDumpCmd(afero.NewOsFs()))
	return cmd
}

// newRulesDumpCmd creates the rules dump command writing files through fs.
func newRulesDumpCmd(fs afero.Fs) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the built-in rule tables as YAML",
		Long: `Print the built-in classification rule tables as YAML.

The output is a valid rules document and can be edited and referenced with
classifier.rules_file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := rules.DefaultDocument().Marshal()
			if err != nil {
				return err
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := afero.WriteFile(fs, out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write rules to %s: %w", out, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Rules written to %s\n", out)
			return err
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the rules to a file instead of stdout")
	return cmd
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newRulesCmd())
}
