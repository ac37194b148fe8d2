package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/viraforge/viraforge/internal/config"
	"github.com/viraforge/viraforge/internal/project"
	"github.com/viraforge/viraforge/internal/shadow"
)

var (
	verifyEnv      string
	verifyShadowDB string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Replay all migrations against the shadow database",
	Long: `Replay all migrations against the shadow database.

Every versioned migration runs in order against the environment's shadow
database URL. The target project is never touched.`,
	Run: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyEnv, "environment", "", "Environment whose shadow database to use")
	verifyCmd.Flags().StringVar(&verifyShadowDB, "shadow-db", "", "Override shadow database URL")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	shadowURL := strings.TrimSpace(verifyShadowDB)
	if shadowURL == "" {
		env, err := config.ResolveEnvironment(cfg, verifyEnv)
		if err != nil {
			log.Fatalf("Failed to resolve environment: %v", err)
		}
		shadowURL = env.ShadowDatabaseURL
	}

	migrationDir := filepath.Join(cfg.ProjectRoot(), project.MigrationDir)
	verifier := shadow.NewVerifier(shadowURL)
	results, err := verifier.Verify(context.Background(), migrationDir)
	if err != nil {
		log.Fatalf("Verification failed to run: %v", err)
	}

	for _, r := range results {
		if r.Err != nil {
			_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s: %v\n", r.File, r.Err)
		} else {
			fmt.Fprintf(os.Stderr, "✓ %s\n", r.File)
		}
	}

	if failure, failed := shadow.Failed(results); failed {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr,
			"Migration %s failed against %s\n", failure.File, shadow.DetectDriver(shadowURL))
		os.Exit(1)
	}
	_, _ = color.New(color.FgGreen).Fprintf(os.Stderr,
		"✓ All %d migrations applied cleanly\n", len(results))
}
