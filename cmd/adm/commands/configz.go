package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"linguatranslate/internal/config"
)

// ConfigCommands returns the configuration dump command
func ConfigCommands(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "configz",
		Short: "Dump the merged configuration with secrets redacted",
		RunE: func(_ *cobra.Command, _ []string) error {
			out, err := yaml.Marshal(cfg.Redacted())
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
}
