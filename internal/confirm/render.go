package confirm

import (
	"fmt"
	"strings"

	"github.com/viraforge/viraforge/internal/analyze"
)

// RenderAnalysis renders the impact analysis shown before confirmation.
func RenderAnalysis(a analyze.Analysis) string {
	var b strings.Builder

	b.WriteString(renderHeader("FIELD OPERATION IMPACT ANALYSIS") + "\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("Service: %s | Table: %s | Operations: %d",
		a.ServiceName, a.TableName, a.OperationCount)) + "\n")

	if len(a.MigrationChanges) > 0 {
		b.WriteString(renderSectionHeader(iconDatabase, fmt.Sprintf("DATABASE CHANGES (%d)", len(a.MigrationChanges))) + "\n")
		for _, change := range a.MigrationChanges {
			line := fmt.Sprintf("  %s %s", change.Kind, change.FieldName)
			if change.ManualConfirmation {
				line += warningStyle.Render("  [REQUIRES MANUAL CONFIRMATION]")
			}
			b.WriteString(line + "\n")
		}
	}

	if len(a.FilesToModify) > 0 {
		b.WriteString(renderSectionHeader(iconFiles, fmt.Sprintf("FILES TO MODIFY (%d)", len(a.FilesToModify))) + "\n")
		for _, file := range a.FilesToModify {
			b.WriteString(infoStyle.Render("  "+file) + "\n")
		}
	}

	if len(a.PotentialRisks) > 0 {
		b.WriteString(renderSectionHeader(iconRisk, fmt.Sprintf("POTENTIAL RISKS (%d)", len(a.PotentialRisks))) + "\n")
		for _, risk := range a.PotentialRisks {
			b.WriteString(warningStyle.Render("  "+risk) + "\n")
		}
	}

	if len(a.BreakingChanges) > 0 {
		b.WriteString(renderSectionHeader(iconBreaking, fmt.Sprintf("BREAKING CHANGES (%d)", len(a.BreakingChanges))) + "\n")
		for _, change := range a.BreakingChanges {
			b.WriteString(errorStyle.Render("  "+change) + "\n")
		}
	}

	return b.String()
}

// RenderDetails renders the per-change SQL view behind "show details".
func RenderDetails(a analyze.Analysis) string {
	var b strings.Builder

	b.WriteString(renderHeader("DETAILED ANALYSIS") + "\n\n")
	b.WriteString(sectionHeaderStyle.Render("Migration SQL") + "\n")
	if len(a.MigrationChanges) == 0 {
		b.WriteString(labelStyle.Render("  (no database changes)") + "\n")
	}
	for _, change := range a.MigrationChanges {
		b.WriteString(fmt.Sprintf("  -- %s %s\n", change.Kind, change.FieldName))
		b.WriteString("  " + change.SQL + "\n")
	}

	if len(a.DependencyImpacts) > 0 {
		b.WriteString("\n" + sectionHeaderStyle.Render("Dependency Impacts") + "\n")
		for _, impact := range a.DependencyImpacts {
			b.WriteString("  " + impact + "\n")
		}
	}

	if len(a.ValidationResults) > 0 {
		b.WriteString("\n" + sectionHeaderStyle.Render("Validation Results") + "\n")
		for _, result := range a.ValidationResults {
			b.WriteString("  " + result + "\n")
		}
	}

	return b.String()
}
