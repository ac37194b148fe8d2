package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/viraforge/viraforge/internal/project"
	"github.com/viraforge/viraforge/internal/sqlcheck"
)

var lintCmd = &cobra.Command{
	Use:   "lint [path]",
	Short: "Lint migration SQL for syntax errors and destructive statements",
	Long: `Lint migration SQL for syntax errors and destructive statements.

Without arguments the project's migration directory is linted. A file
argument lints just that file.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) {
	var issues []sqlcheck.Issue

	if len(args) == 1 {
		info, err := os.Stat(args[0])
		if err != nil {
			log.Fatalf("Failed to access %s: %v", args[0], err)
		}
		if info.IsDir() {
			issues, err = sqlcheck.LintDir(args[0])
			if err != nil {
				log.Fatalf("Lint failed: %v", err)
			}
		} else {
			issues = sqlcheck.LintFile(args[0])
		}
	} else {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		dir := filepath.Join(cfg.ProjectRoot(), project.MigrationDir)
		issues, err = sqlcheck.LintDir(dir)
		if err != nil {
			log.Fatalf("Lint failed: %v", err)
		}
	}

	result := sqlcheck.NewResult(issues)
	for _, issue := range result.Issues {
		line := fmt.Sprintf("%s:%d: %s: %s", issue.File, issue.Line, issue.Severity, issue.Message)
		if issue.Severity == "error" {
			_, _ = color.New(color.FgRed).Fprintln(os.Stderr, line)
		} else {
			_, _ = color.New(color.FgYellow).Fprintln(os.Stderr, line)
		}
	}

	if !result.Valid {
		os.Exit(1)
	}
	if len(result.Issues) == 0 {
		_, _ = color.New(color.FgGreen).Fprintln(os.Stderr, "✓ No issues found")
	}
}
