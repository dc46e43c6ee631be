package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	defaultConfigFileName = "config.yml"
)

var (
	cfgPath     string
	replay      bool
	opener      bool
	openerIsSet bool
	rootCmd     = &cobra.Command{
		Use:   "staking-agent",
		Short: "Threshold multisig staking agent for the parachain and relay chain staking pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			openerIsSet = cmd.Flags().Changed("opener")
			return nil
		},
	}
)

func Setup() error {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	defaultConfigPath := getDefaultConfigFile(homePath, defaultConfigFileName)

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath, fmt.Sprintf("config file (default %s)", defaultConfigPath))
	rootCmd.PersistentFlags().BoolVar(&opener, "opener", false, "run as the opener of threshold operations, overrides signer.is-opener")
	rootCmd.PersistentFlags().BoolVar(&replay, "replay", false, "replay stored failed operations once and exit")
	if err := rootCmd.Execute(); err != nil {
		return err
	}

	return nil
}

func getDefaultConfigFile(homePath, filename string) string {
	return filepath.Join(homePath, filename)
}

func GetConfigPath() string {
	return cfgPath
}

func GetReplayFlag() bool {
	return replay
}

// GetOpenerOverride returns the --opener value and whether it was given.
func GetOpenerOverride() (bool, bool) {
	return opener, openerIsSet
}
