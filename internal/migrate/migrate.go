// Package migrate generates versioned SQL migration files for field
// operations and tracks the version sequence of the migration directory.
package migrate

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"text/template"
	"time"

	"github.com/viraforge/viraforge/internal/fieldops"
	"github.com/viraforge/viraforge/internal/project"
)

// TemplateName is the migration template looked up under
// <templates>/field_operations/.
const TemplateName = "migration_alter.sql.tmpl"

var versionPattern = regexp.MustCompile(`^V(\d+)__.*\.sql$`)

// NextVersion returns one past the highest V<n>__*.sql version in the
// migration directory. An empty or missing directory starts at 1.
func NextVersion(migrationDir string) (int, error) {
	entries, err := os.ReadDir(migrationDir)
	if os.IsNotExist(err) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read migration directory: %w", err)
	}

	max := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := versionPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		if v, err := strconv.Atoi(m[1]); err == nil && v > max {
			max = v
		}
	}
	return max + 1, nil
}

// Summary describes the operation set for migration headers, e.g.
// "Add 2 fields, Remove 1 field".
func Summary(ops []fieldops.Operation) string {
	adds, updates, removes := fieldops.CountByAction(ops)

	var parts []string
	if adds > 0 {
		parts = append(parts, fmt.Sprintf("Add %d field%s", adds, plural(adds)))
	}
	if updates > 0 {
		parts = append(parts, fmt.Sprintf("Update %d field%s", updates, plural(updates)))
	}
	if removes > 0 {
		parts = append(parts, fmt.Sprintf("Remove %d field%s", removes, plural(removes)))
	}

	summary := ""
	for i, part := range parts {
		if i > 0 {
			summary += ", "
		}
		summary += part
	}
	return summary
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

// Generator renders migration files from the templates directory.
type Generator struct {
	ProjectRoot  string
	TemplatesDir string

	// now is swappable for tests.
	now func() time.Time
}

// NewGenerator returns a Generator for the given project and templates roots.
func NewGenerator(projectRoot, templatesDir string) *Generator {
	return &Generator{ProjectRoot: projectRoot, TemplatesDir: templatesDir, now: time.Now}
}

type addColumn struct {
	Name       string
	Type       string
	NotNull    bool
	HasDefault bool
	Default    string
}

type updateColumn struct {
	Name    string
	NewType string
}

type migrationData struct {
	MigrationVersion   string
	ServiceName        string
	TableName          string
	ServiceDescription string
	OperationsSummary  string
	GenerationDate     string
	AddColumns         []addColumn
	UpdateColumns      []updateColumn
	RemoveColumns      []string
	HasUpdatedAt       bool
}

// Generate renders the migration for the operation set and writes it into the
// project's migration directory under the next version. Returns the written
// path. A missing template skips generation with a warning and returns empty.
func (g *Generator) Generate(svc project.Service, ops []fieldops.Operation) (string, error) {
	templatePath := filepath.Join(g.TemplatesDir, "field_operations", TemplateName)
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		log.Printf("warning: migration template not found, skipping migration generation: %v", err)
		return "", nil
	}

	migrationDir := filepath.Join(g.ProjectRoot, project.MigrationDir)
	if err := os.MkdirAll(migrationDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create migration directory: %w", err)
	}

	version, err := NextVersion(migrationDir)
	if err != nil {
		return "", err
	}

	data := migrationData{
		MigrationVersion:   fmt.Sprintf("V%d", version),
		ServiceName:        svc.Name,
		TableName:          svc.Table,
		ServiceDescription: svc.Description,
		OperationsSummary:  Summary(ops),
		GenerationDate:     g.now().Format("2006-01-02 15:04:05"),
	}
	if data.ServiceDescription == "" {
		data.ServiceDescription = svc.Name + " service"
	}

	for _, op := range ops {
		switch op.Action {
		case fieldops.ActionAdd:
			f := *op.Field
			col := addColumn{
				Name:    f.Name,
				Type:    f.Type,
				NotNull: !f.IsNullable(),
			}
			if f.HasDefault() {
				col.HasDefault = true
				col.Default = SQLLiteral(*f.DefaultValue, f.JavaType)
			}
			data.AddColumns = append(data.AddColumns, col)
			if f.Name == "updated_at" {
				data.HasUpdatedAt = true
			}
		case fieldops.ActionUpdate:
			if op.Changes.Type != "" {
				data.UpdateColumns = append(data.UpdateColumns, updateColumn{
					Name:    op.FieldName,
					NewType: op.Changes.Type,
				})
			}
		case fieldops.ActionRemove:
			data.RemoveColumns = append(data.RemoveColumns, op.FieldName)
		}
	}

	name := fmt.Sprintf("%s__Update_%s_%s_fields.sql", data.MigrationVersion, svc.Name, svc.Table)
	path := filepath.Join(migrationDir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create migration file: %w", err)
	}
	if err := tmpl.Execute(out, data); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to render migration: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write migration file: %w", err)
	}
	return path, nil
}

// SQLLiteral quotes a default value when its Java type is textual; numeric,
// boolean, and expression defaults pass through as written.
func SQLLiteral(value, javaType string) string {
	if javaType == "String" && !isExpression(value) {
		return "'" + value + "'"
	}
	return value
}

// isExpression treats function-call defaults like CURRENT_TIMESTAMP or NOW()
// as raw SQL.
func isExpression(value string) bool {
	for _, r := range value {
		if r == '(' || r == ')' {
			return true
		}
	}
	switch value {
	case "CURRENT_TIMESTAMP", "CURRENT_DATE", "NULL":
		return true
	}
	return false
}
