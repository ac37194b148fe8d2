// Package scaffold generates the full artifact set of a new service from a
// declarative definition file. Generation is all-or-nothing: any failure
// removes every file written in the run.
package scaffold

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/viraforge/viraforge/internal/fieldops"
	"github.com/viraforge/viraforge/internal/migrate"
	"github.com/viraforge/viraforge/internal/project"
	"github.com/viraforge/viraforge/internal/strutil"
)

// DefinitionError reports an invalid service definition.
type DefinitionError struct {
	Reason string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid service definition: %s", e.Reason)
}

// Definition is the parsed service-definition document.
type Definition struct {
	Service struct {
		Name        string `json:"name"`
		Entity      string `json:"entity,omitempty"`
		Description string `json:"description,omitempty"`
	} `json:"service"`
	Database struct {
		Table string `json:"table"`
	} `json:"database"`
	Fields []fieldops.Field `json:"fields"`
}

// ServiceInfo maps the definition onto the convention-based service layout.
func (d *Definition) ServiceInfo() project.Service {
	return project.Service{
		Name:        d.Service.Name,
		Table:       d.Database.Table,
		Entity:      d.Service.Entity,
		Description: d.Service.Description,
	}
}

var (
	serviceNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*$`)
	lowerSnakeRe  = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// LoadDefinition reads and validates a service-definition file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read service definition: %w", err)
	}
	return ParseDefinition(data)
}

// ParseDefinition validates the document against the definition schema and
// the naming conventions, then decodes it.
func ParseDefinition(data []byte) (*Definition, error) {
	schemaLoader := gojsonschema.NewStringLoader(definitionSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, &DefinitionError{Reason: fmt.Sprintf("not a valid JSON document: %v", err)}
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, &DefinitionError{Reason: strings.Join(problems, "; ")}
	}

	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, &DefinitionError{Reason: err.Error()}
	}

	if !serviceNameRe.MatchString(def.Service.Name) {
		return nil, &DefinitionError{Reason: fmt.Sprintf("service name %q must be alphanumeric and start with a letter", def.Service.Name)}
	}
	if !lowerSnakeRe.MatchString(def.Database.Table) {
		return nil, &DefinitionError{Reason: fmt.Sprintf("table name %q must be lowercase with underscores", def.Database.Table)}
	}
	if len(def.Fields) == 0 {
		return nil, &DefinitionError{Reason: "at least one field is required"}
	}

	hasPrimaryKey := false
	for _, f := range def.Fields {
		if !lowerSnakeRe.MatchString(f.Name) {
			return nil, &DefinitionError{Reason: fmt.Sprintf("field name %q must be lowercase with underscores", f.Name)}
		}
		if f.Type == "" || f.JavaType == "" {
			return nil, &DefinitionError{Reason: fmt.Sprintf("field %q must have both 'type' and 'javaType'", f.Name)}
		}
		if f.PrimaryKey {
			hasPrimaryKey = true
		}
	}
	if !hasPrimaryKey {
		return nil, &DefinitionError{Reason: "at least one field must be marked as primaryKey"}
	}

	return &def, nil
}

// artifact pairs a template under <templates>/service/ with the output path
// it renders to.
type artifact struct {
	template string
	path     func(svc project.Service, migrationVersion int) string
}

var artifacts = []artifact{
	{"create_table.sql.tmpl", func(svc project.Service, v int) string {
		return filepath.Join(project.MigrationDir, fmt.Sprintf("V%d__Create_%s_%s.sql", v, svc.Name, svc.Table))
	}},
	{"model.java.tmpl", func(svc project.Service, _ int) string { return svc.ModelPath() }},
	{"repository.java.tmpl", func(svc project.Service, _ int) string { return svc.RepositoryPath() }},
	{"service.java.tmpl", func(svc project.Service, _ int) string { return svc.ServicePath() }},
	{"controller.java.tmpl", func(svc project.Service, _ int) string { return svc.ControllerPath() }},
	{"request_dto.java.tmpl", func(svc project.Service, _ int) string { return svc.RequestDTOPath() }},
	{"response_dto.java.tmpl", func(svc project.Service, _ int) string { return svc.ResponseDTOPath() }},
	{"api_service.js.tmpl", func(svc project.Service, _ int) string { return svc.FrontendAPIPath() }},
}

// Generator renders a service definition into the project tree.
type Generator struct {
	ProjectRoot  string
	TemplatesDir string

	// now is swappable for tests.
	now func() time.Time

	written []string
}

// NewGenerator returns a Generator for the given project and templates roots.
func NewGenerator(projectRoot, templatesDir string) *Generator {
	return &Generator{ProjectRoot: projectRoot, TemplatesDir: templatesDir, now: time.Now}
}

// funcMap exposes the naming and type helpers to the templates.
func funcMap() template.FuncMap {
	return template.FuncMap{
		"add":       func(a, b int) int { return a + b },
		"camel":     strutil.ToCamel,
		"pascal":    strutil.ToPascal,
		"snake":     strutil.ToSnake,
		"title":     strutil.Title,
		"humanize":  strutil.Humanize,
		"lower":     strings.ToLower,
		"javaType":  strutil.JavaType,
		"tsType":    strutil.TypeScriptType,
		"testValue": strutil.TestValue,
		"example":   strutil.ExampleValue,
		"sqlDefault": func(f fieldops.Field) string {
			if f.DefaultValue == nil {
				return ""
			}
			return migrate.SQLLiteral(*f.DefaultValue, f.JavaType)
		},
	}
}

type templateData struct {
	Service        project.Service
	Entity         string
	Package        string
	Fields         []fieldops.Field
	GenerationDate string
}

// Plan returns the paths Generate would write, without writing anything.
// Artifacts whose template is missing are omitted, matching Generate.
func (g *Generator) Plan(def *Definition) ([]string, error) {
	svc := def.ServiceInfo()

	version, err := migrate.NextVersion(filepath.Join(g.ProjectRoot, project.MigrationDir))
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, a := range artifacts {
		if _, err := os.Stat(filepath.Join(g.TemplatesDir, "service", a.template)); err != nil {
			continue
		}
		paths = append(paths, filepath.Join(g.ProjectRoot, a.path(svc, version)))
	}
	return paths, nil
}

// Generate renders every available artifact template. Missing templates are
// skipped with a warning; any render or write failure removes everything the
// run wrote and returns the error. Returns the written paths.
func (g *Generator) Generate(def *Definition) ([]string, error) {
	svc := def.ServiceInfo()
	g.written = nil

	migrationDir := filepath.Join(g.ProjectRoot, project.MigrationDir)
	version, err := migrate.NextVersion(migrationDir)
	if err != nil {
		return nil, err
	}

	data := templateData{
		Service:        svc,
		Entity:         svc.EntityName(),
		Package:        "com.vira." + svc.Name,
		Fields:         def.Fields,
		GenerationDate: g.now().Format("2006-01-02 15:04:05"),
	}

	for _, a := range artifacts {
		templatePath := filepath.Join(g.TemplatesDir, "service", a.template)
		tmpl, err := template.New(a.template).Funcs(funcMap()).ParseFiles(templatePath)
		if err != nil {
			log.Printf("warning: template %s not found, skipping", a.template)
			continue
		}

		outPath := filepath.Join(g.ProjectRoot, a.path(svc, version))
		if err := g.render(tmpl, outPath, data); err != nil {
			g.rollback()
			return nil, err
		}
	}

	return g.written, nil
}

func (g *Generator) render(tmpl *template.Template, path string, data templateData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	g.written = append(g.written, path)

	if err := tmpl.Execute(out, data); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return out.Close()
}

// rollback removes everything written in this run, newest first.
func (g *Generator) rollback() {
	for i := len(g.written) - 1; i >= 0; i-- {
		if err := os.Remove(g.written[i]); err != nil && !os.IsNotExist(err) {
			log.Printf("warning: rollback failed to remove %s: %v", g.written[i], err)
		}
	}
	g.written = nil
}
