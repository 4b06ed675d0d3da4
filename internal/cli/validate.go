package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jinbangyi/apikey-usage-inspector/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration without touching the network",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		failed := false
		for _, pc := range cfg.Providers {
			if !pc.Enabled {
				fmt.Printf("  - %s: disabled\n", pc.Name)
				continue
			}
			if err := pc.Validate(); err != nil {
				fmt.Printf("  - %s: INVALID: %v\n", pc.Name, err)
				failed = true
				continue
			}
			fmt.Printf("  - %s: ok (%s)\n", pc.Name, pc.AuthMode)
		}

		if failed {
			return fmt.Errorf("configuration has invalid provider entries")
		}
		fmt.Printf("%d providers configured, push target %s (job %s)\n",
			len(cfg.Providers), cfg.Settings.Push.URL, cfg.Settings.Push.Job)
		return nil
	},
}
