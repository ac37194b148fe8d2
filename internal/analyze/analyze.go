package analyze

import (
	"fmt"

	"github.com/viraforge/viraforge/internal/fieldops"
	"github.com/viraforge/viraforge/internal/project"
)

// ChangeKind classifies a migration change record.
type ChangeKind string

const (
	AddColumn    ChangeKind = "ADD_COLUMN"
	ModifyColumn ChangeKind = "MODIFY_COLUMN"
	DropColumn   ChangeKind = "DROP_COLUMN"
)

// MigrationChange is one schema change the operation set implies.
type MigrationChange struct {
	Kind      ChangeKind `json:"type"`
	FieldName string     `json:"field_name"`
	SQL       string     `json:"sql"`
	// ManualConfirmation marks statements that are emitted commented out and
	// must never run automatically.
	ManualConfirmation bool `json:"manual_confirmation,omitempty"`
}

// Analysis is the impact report for one operation set. Built once per
// invocation and never mutated after return.
type Analysis struct {
	ServiceName       string            `json:"service_name"`
	TableName         string            `json:"table_name"`
	OperationCount    int               `json:"operations_count"`
	FilesToModify     []string          `json:"files_to_modify"`
	MigrationChanges  []MigrationChange `json:"migration_changes"`
	PotentialRisks    []string          `json:"potential_risks"`
	DependencyImpacts []string          `json:"dependency_impacts"`
	BreakingChanges   []string          `json:"breaking_changes"`
	ValidationResults []string          `json:"validation_results"`
}

// Analyze computes the impact of an operation set. Pure: identical input
// yields identical output.
func Analyze(svc project.Service, ops []fieldops.Operation) *Analysis {
	a := &Analysis{
		ServiceName:    svc.Name,
		TableName:      svc.Table,
		OperationCount: len(ops),
	}

	for _, op := range ops {
		analyzeOperation(a, svc, op)
	}

	a.FilesToModify = svc.DependentFiles()
	return a
}

func analyzeOperation(a *Analysis, svc project.Service, op fieldops.Operation) {
	switch op.Action {
	case fieldops.ActionAdd:
		f := op.Field
		a.MigrationChanges = append(a.MigrationChanges, MigrationChange{
			Kind:      AddColumn,
			FieldName: f.Name,
			SQL:       fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", svc.Table, f.Name, f.Type),
		})
		if !f.IsNullable() && !f.HasDefault() {
			a.PotentialRisks = append(a.PotentialRisks, fmt.Sprintf(
				"Adding non-nullable field '%s' without default value may fail if table has data", f.Name))
		}

	case fieldops.ActionUpdate:
		if op.Changes.Type != "" {
			a.MigrationChanges = append(a.MigrationChanges, MigrationChange{
				Kind:      ModifyColumn,
				FieldName: op.FieldName,
				SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s",
					svc.Table, op.FieldName, op.Changes.Type),
			})
			a.PotentialRisks = append(a.PotentialRisks, fmt.Sprintf(
				"Changing type of field '%s' may cause data loss if incompatible", op.FieldName))
		}

	case fieldops.ActionRemove:
		a.MigrationChanges = append(a.MigrationChanges, MigrationChange{
			Kind:      DropColumn,
			FieldName: op.FieldName,
			SQL: fmt.Sprintf("-- ALTER TABLE %s DROP COLUMN %s; -- REQUIRES MANUAL CONFIRMATION",
				svc.Table, op.FieldName),
			ManualConfirmation: true,
		})
		a.BreakingChanges = append(a.BreakingChanges, fmt.Sprintf(
			"Removing field '%s' will break any code that references it", op.FieldName))
	}
}
