package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/tealer/internal/detectors"
	"github.com/gnolang/tealer/lint"
)

// newInitCmd: tealer init
func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new tealer configuration file",
		Long: `Writes a configuration file enabling every detector.
The file is TOML when its name ends in .toml and YAML otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := initConfigurationFile(opts.cfgFile)
			if err != nil {
				return fmt.Errorf("error initializing config file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created/updated: %s\n", path)
			return nil
		},
	}
}

func initConfigurationFile(configurationPath string) (string, error) {
	if configurationPath == "" {
		configurationPath = lint.DefaultConfigPath
	}

	config := lint.DefaultConfig()
	for _, d := range detectors.List() {
		config.Detectors[d.Name] = lint.DetectorConfig{Off: false}
	}
	config.ComplexityThreshold = detectors.DefaultComplexityThreshold

	if err := lint.WriteConfig(configurationPath, config); err != nil {
		return "", err
	}
	return configurationPath, nil
}
