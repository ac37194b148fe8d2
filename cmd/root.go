package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/viraforge/viraforge/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "viraforge",
	Short: "Viraforge generates and modifies layered Spring backend services.",
	Long: `Viraforge generates and modifies layered Spring backend services.

It scaffolds full service stacks from declarative definitions and applies
field-level changes across the entity, DTOs, service, repository, and
migrations, with snapshot-based rollback when anything fails.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Explicit path to viraforge.toml")
}

// loadConfig honors --config when set, otherwise searches upward for
// viraforge.toml.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadConfigFile(configPath)
	}
	return config.LoadConfig()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
