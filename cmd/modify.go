package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/viraforge/viraforge/internal/applier"
	"github.com/viraforge/viraforge/internal/confirm"
	"github.com/viraforge/viraforge/internal/fieldops"
	"github.com/viraforge/viraforge/internal/migrate"
	"github.com/viraforge/viraforge/internal/safety"
)

var (
	modifyOperations  string
	modifyDryRun      bool
	modifyAutoConfirm bool
	modifyVerbose     bool
	modifyOutputJSON  bool
)

var modifyCmd = &cobra.Command{
	Use:   "modify",
	Short: "Apply declarative field operations to an existing service",
	Long: `Apply declarative field operations to an existing service.

Reads an operations file describing add/update/remove field changes,
analyzes their impact, validates them for safety, snapshots the affected
files, then rewrites the migration, entity, DTOs, service, and repository.
Any failure after the snapshot restores the project from it.`,
	Run: runModify,
}

func init() {
	modifyCmd.Flags().StringVar(&modifyOperations, "operations", "", "Path to the operations JSON file (required)")
	modifyCmd.Flags().BoolVar(&modifyDryRun, "dry-run", false, "Analyze and report without modifying anything")
	modifyCmd.Flags().BoolVar(&modifyAutoConfirm, "auto-confirm", false, "Skip the confirmation prompt")
	modifyCmd.Flags().BoolVar(&modifyVerbose, "verbose", false, "Print the detailed analysis before applying")
	modifyCmd.Flags().BoolVar(&modifyOutputJSON, "json", false, "Output the dry-run analysis as JSON")
	_ = modifyCmd.MarkFlagRequired("operations")
	rootCmd.AddCommand(modifyCmd)
}

func runModify(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	req, err := fieldops.LoadRequest(modifyOperations)
	if err != nil {
		log.Fatalf("Failed to load operations file: %v", err)
	}
	if modifyDryRun {
		req.Options.DryRun = true
	}
	if modifyAutoConfirm {
		req.Options.AutoConfirm = true
	}

	a := applier.New(cfg.ProjectRoot(), cfg.TemplatesDir(), cfg.BackupsDir())
	result, err := a.Run(req)
	if err != nil {
		reportModifyError(err)
	}

	if result.DryRun {
		if modifyOutputJSON {
			output, err := json.MarshalIndent(result.Analysis, "", "  ")
			if err != nil {
				log.Fatalf("Failed to marshal analysis: %v", err)
			}
			fmt.Println(string(output))
		} else {
			fmt.Fprintln(os.Stderr, confirm.RenderAnalysis(*result.Analysis))
			fmt.Fprintln(os.Stderr, "\nDry run: nothing was modified.")
		}
		return
	}

	if modifyVerbose {
		fmt.Fprintln(os.Stderr, confirm.RenderDetails(*result.Analysis))
	}

	green := color.New(color.FgGreen)
	_, _ = green.Fprintf(os.Stderr, "✓ %s applied to service %s\n",
		migrate.Summary(req.Operations), req.TargetService.Name)
	if result.MigrationFile != "" {
		fmt.Fprintf(os.Stderr, "  Migration: %s\n", result.MigrationFile)
	}
	if result.FrontendNotes != "" {
		fmt.Fprintf(os.Stderr, "  Frontend notes: %s\n", result.FrontendNotes)
	}
	fmt.Fprintf(os.Stderr, "  Backup: %s\n", result.BackupID)

	if len(result.TestSuggestions) > 0 {
		fmt.Fprintln(os.Stderr, "\nSuggested test fixture updates:")
		for _, line := range result.TestSuggestions {
			fmt.Fprintln(os.Stderr, line)
		}
	}
}

func reportModifyError(err error) {
	if errors.Is(err, applier.ErrCancelled) {
		fmt.Fprintln(os.Stderr, "Cancelled. Nothing was modified.")
		os.Exit(1)
	}

	var violation *safety.Violation
	if errors.As(err, &violation) {
		_, _ = color.New(color.FgRed).Fprintln(os.Stderr, "Safety validation failed:")
		for _, problem := range violation.Problems {
			fmt.Fprintf(os.Stderr, "  - %s\n", problem)
		}
		os.Exit(1)
	}

	var restoreFailure *applier.RestoreFailure
	if errors.As(err, &restoreFailure) {
		// Worst case: the project may be half modified. Make it loud.
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	log.Fatalf("Modify failed: %v", err)
}
