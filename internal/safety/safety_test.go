package safety

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/viraforge/viraforge/internal/fieldops"
	"github.com/viraforge/viraforge/internal/project"
)

var svc = project.Service{Name: "product", Table: "products"}

func TestValidate_RemovePrimaryKey(t *testing.T) {
	v := Validator{ProjectRoot: t.TempDir()}

	for _, name := range []string{"id", "ID", "uuid", "Uuid"} {
		errs := v.Validate(fieldops.Operation{Action: fieldops.ActionRemove, FieldName: name}, svc)
		if len(errs) == 0 {
			t.Errorf("remove of %q must be blocked", name)
			continue
		}
		if !strings.Contains(errs[0], "primary key") {
			t.Errorf("error for %q does not mention primary key: %s", name, errs[0])
		}
	}
}

func TestValidate_RemoveRegularFieldIsSafe(t *testing.T) {
	v := Validator{ProjectRoot: t.TempDir()}
	errs := v.Validate(fieldops.Operation{Action: fieldops.ActionRemove, FieldName: "notes"}, svc)
	if len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestValidate_RemoveForeignKeyTarget(t *testing.T) {
	root := t.TempDir()
	migrationDir := filepath.Join(root, project.MigrationDir)
	if err := os.MkdirAll(migrationDir, 0755); err != nil {
		t.Fatal(err)
	}
	sql := "CREATE TABLE orders (\n  product_sku VARCHAR(64) REFERENCES products(sku)\n);\n"
	if err := os.WriteFile(filepath.Join(migrationDir, "V2__Create_orders.sql"), []byte(sql), 0644); err != nil {
		t.Fatal(err)
	}

	v := Validator{ProjectRoot: root}
	errs := v.Validate(fieldops.Operation{Action: fieldops.ActionRemove, FieldName: "sku"}, svc)
	if len(errs) == 0 {
		t.Fatal("remove of a REFERENCES target must be blocked")
	}
	if !strings.Contains(errs[0], "foreign key") {
		t.Errorf("error does not mention foreign keys: %s", errs[0])
	}

	// A field nobody references stays removable.
	errs = v.Validate(fieldops.Operation{Action: fieldops.ActionRemove, FieldName: "color"}, svc)
	if len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestValidate_UpdatePrimaryKey(t *testing.T) {
	v := Validator{ProjectRoot: t.TempDir()}
	errs := v.Validate(fieldops.Operation{
		Action:    fieldops.ActionUpdate,
		FieldName: "uuid",
		Changes:   &fieldops.Changes{Type: "VARCHAR(64)"},
	}, svc)
	if len(errs) == 0 {
		t.Fatal("update of uuid must be blocked")
	}
}

func TestValidate_UpdateTypeChange(t *testing.T) {
	v := Validator{ProjectRoot: t.TempDir()}

	tests := []struct {
		newType string
		safe    bool
	}{
		{"VARCHAR(500)", true},
		{"varchar(100)", true},
		{"TEXT", false},
		{"BIGINT", false},
		// Widening numerics is still presumed unsafe. Conservative on purpose.
		{"DECIMAL(12,4)", false},
	}
	for _, tt := range tests {
		errs := v.Validate(fieldops.Operation{
			Action:    fieldops.ActionUpdate,
			FieldName: "status",
			Changes:   &fieldops.Changes{Type: tt.newType},
		}, svc)
		if tt.safe && len(errs) != 0 {
			t.Errorf("type change to %s flagged unsafe: %v", tt.newType, errs)
		}
		if !tt.safe && len(errs) == 0 {
			t.Errorf("type change to %s must be flagged unsafe", tt.newType)
		}
	}
}

func TestValidate_UpdateWithoutTypeChange(t *testing.T) {
	v := Validator{ProjectRoot: t.TempDir()}
	errs := v.Validate(fieldops.Operation{
		Action:    fieldops.ActionUpdate,
		FieldName: "status",
		Changes:   &fieldops.Changes{Validation: &fieldops.ValidationRules{MaxLength: 50}},
	}, svc)
	if len(errs) != 0 {
		t.Errorf("validation-only update should be safe: %v", errs)
	}
}

func TestValidateAll_CollectsAcrossOperations(t *testing.T) {
	v := Validator{ProjectRoot: t.TempDir()}
	ops := []fieldops.Operation{
		{Action: fieldops.ActionRemove, FieldName: "id"},
		{Action: fieldops.ActionUpdate, FieldName: "price", Changes: &fieldops.Changes{Type: "BIGINT"}},
		{Action: fieldops.ActionAdd, Field: &fieldops.Field{Name: "notes", Type: "TEXT", JavaType: "String"}},
	}
	errs := v.ValidateAll(ops, svc)
	if len(errs) != 2 {
		t.Errorf("expected 2 errors, got %d: %v", len(errs), errs)
	}
}
