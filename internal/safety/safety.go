package safety

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viraforge/viraforge/internal/fieldops"
	"github.com/viraforge/viraforge/internal/project"
)

// Violation aggregates the safety errors that blocked an operation set.
// Reported before any mutation; no snapshot is taken.
type Violation struct {
	Problems []string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("safety validation failed: %s", strings.Join(v.Problems, "; "))
}

// Validator applies heuristic safety checks over naming conventions and
// migration-file text. It never introspects a live schema.
type Validator struct {
	ProjectRoot string
}

// ValidateAll runs every operation through Validate and collects the errors.
func (v Validator) ValidateAll(ops []fieldops.Operation, svc project.Service) []string {
	var errs []string
	for _, op := range ops {
		errs = append(errs, v.Validate(op, svc)...)
	}
	return errs
}

// Validate returns the safety errors for one operation. Empty means safe.
func (v Validator) Validate(op fieldops.Operation, svc project.Service) []string {
	var errs []string

	switch op.Action {
	case fieldops.ActionRemove:
		if isPrimaryKeyName(op.FieldName) {
			errs = append(errs, fmt.Sprintf("Cannot remove primary key field: %s", op.FieldName))
		}
		if v.hasForeignKeyReference(svc.Table, op.FieldName) {
			errs = append(errs, fmt.Sprintf("Field %s is referenced by foreign keys in other tables", op.FieldName))
		}

	case fieldops.ActionUpdate:
		if isPrimaryKeyName(op.FieldName) {
			errs = append(errs, fmt.Sprintf("Cannot modify primary key field: %s", op.FieldName))
		}
		if op.Changes.Type != "" && !isTypeChangeSafe(op.Changes.Type) {
			errs = append(errs, fmt.Sprintf("Type change for field %s may cause data loss", op.FieldName))
		}
	}

	return errs
}

// isPrimaryKeyName is a naming-convention heuristic, not a schema lookup.
func isPrimaryKeyName(name string) bool {
	switch strings.ToLower(name) {
	case "id", "uuid":
		return true
	}
	return false
}

// hasForeignKeyReference scans existing migration files for a
// REFERENCES table(field) pattern.
func (v Validator) hasForeignKeyReference(table, field string) bool {
	migrationDir := filepath.Join(v.ProjectRoot, project.MigrationDir)
	entries, err := os.ReadDir(migrationDir)
	if err != nil {
		return false
	}

	pattern := fmt.Sprintf("REFERENCES %s(%s)", table, field)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(migrationDir, entry.Name()))
		if err != nil {
			continue
		}
		if strings.Contains(string(content), pattern) {
			return true
		}
	}
	return false
}

// isTypeChangeSafe presumes only character-varying targets are safe.
// Everything else, including widening numeric types, is flagged.
func isTypeChangeSafe(newType string) bool {
	return strings.Contains(strings.ToUpper(newType), "VARCHAR")
}
