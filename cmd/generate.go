package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/viraforge/viraforge/internal/scaffold"
)

var (
	generateDefinition string
	generateDryRun     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a full service stack from a definition file",
	Long: `Generate a full service stack from a definition file.

Renders the migration, entity, repository, service, controller, DTOs, and
frontend API stub for a new service. Generation is all-or-nothing: any
failure removes every file written in the run.`,
	Run: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateDefinition, "definition", "", "Path to the service definition JSON file (required)")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "List the files that would be generated")
	_ = generateCmd.MarkFlagRequired("definition")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	def, err := scaffold.LoadDefinition(generateDefinition)
	if err != nil {
		log.Fatalf("Failed to load service definition: %v", err)
	}

	generator := scaffold.NewGenerator(cfg.ProjectRoot(), cfg.TemplatesDir())

	if generateDryRun {
		planned, err := generator.Plan(def)
		if err != nil {
			log.Fatalf("Failed to plan generation: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Would generate service %s (%d files):\n", def.Service.Name, len(planned))
		for _, path := range planned {
			fmt.Fprintf(os.Stderr, "  %s\n", path)
		}
		return
	}

	written, err := generator.Generate(def)
	if err != nil {
		log.Fatalf("Generation failed, all partial output removed: %v", err)
	}

	_, _ = color.New(color.FgGreen).Fprintf(os.Stderr, "✓ Generated service %s (%d files)\n",
		def.Service.Name, len(written))
	for _, path := range written {
		fmt.Fprintf(os.Stderr, "  %s\n", path)
	}
}
