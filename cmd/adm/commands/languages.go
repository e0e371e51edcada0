package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"linguatranslate/internal/config"
	"linguatranslate/internal/observability"
)

// LanguageCommands returns the language inspection commands
func LanguageCommands(_ *observability.Logger, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported target languages and their capabilities",
		RunE: func(_ *cobra.Command, _ []string) error {
			codes := cfg.GetLanguages()
			if len(codes) == 0 {
				fmt.Println("No supported languages configured")
				return nil
			}

			fmt.Printf("%-8s %-20s %-10s %-10s\n", "CODE", "NAME", "MODEL", "PHRASES")
			for _, code := range codes {
				model := "-"
				if m := cfg.ModelForLanguage(code); m != "" {
					model = m
				}
				phrases := "-"
				if table := cfg.PhraseTableForLanguage(code); table != nil {
					phrases = fmt.Sprintf("%d", len(table))
				}
				fmt.Printf("%-8s %-20s %-10s %-10s\n", code, cfg.Translation.SupportedLanguages[code], model, phrases)
			}
			return nil
		},
	}
}
