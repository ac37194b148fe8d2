// Package rewrite applies field operations to the Java and frontend sources
// of a service by line-oriented patching. Files that are missing or fail to
// parse are skipped with a warning; only write failures are errors, because
// a failed write can leave a file half-rewritten.
package rewrite

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/viraforge/viraforge/internal/fieldops"
	"github.com/viraforge/viraforge/internal/javasrc"
	"github.com/viraforge/viraforge/internal/project"
	"github.com/viraforge/viraforge/internal/strutil"
)

// Updater patches the convention-derived files of one service.
type Updater struct {
	ProjectRoot string
	Extractor   javasrc.Extractor

	// now is swappable for tests.
	now func() time.Time
}

// NewUpdater returns an Updater using the default scan extractor.
func NewUpdater(projectRoot string) *Updater {
	return &Updater{
		ProjectRoot: projectRoot,
		Extractor:   javasrc.NewScanExtractor(),
		now:         time.Now,
	}
}

func (u *Updater) parse(path string) *javasrc.Structure {
	st, err := javasrc.ParseFile(u.Extractor, path)
	if err != nil {
		log.Printf("warning: skipping %s: %v", path, err)
		return nil
	}
	return st
}

func (u *Updater) write(path string, lines []string) error {
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// UpdateModel patches the JPA entity: inserts new field blocks after the last
// existing field, removes field blocks with their annotations and javadoc, and
// rewrites declarations on type changes.
func (u *Updater) UpdateModel(svc project.Service, ops []fieldops.Operation) error {
	path := filepath.Join(u.ProjectRoot, svc.ModelPath())
	st := u.parse(path)
	if st == nil {
		return nil
	}

	lines := applyFieldOps(st, ops, insertionPoint{
		afterLastField: true,
		classMarker:    svc.EntityName(),
	}, func(f fieldops.Field) []string { return modelFieldBlock(f) })

	return u.write(path, lines)
}

// UpdateDTOs patches the request and response DTOs. Auto-generated fields are
// not added to the request DTO, and new fields get accessors appended before
// the closing class brace.
func (u *Updater) UpdateDTOs(svc project.Service, ops []fieldops.Operation) error {
	for _, target := range []struct {
		rel  string
		kind DTOKind
	}{
		{svc.RequestDTOPath(), DTORequest},
		{svc.ResponseDTOPath(), DTOResponse},
	} {
		path := filepath.Join(u.ProjectRoot, target.rel)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Printf("warning: DTO file not found: %s", path)
			continue
		}
		st := u.parse(path)
		if st == nil {
			continue
		}

		kind := target.kind
		lines := applyFieldOps(st, ops, insertionPoint{afterLastField: true}, func(f fieldops.Field) []string {
			if kind == DTORequest && f.AutoGenerated {
				return nil
			}
			return dtoFieldBlock(f, kind)
		})
		lines = appendAccessors(lines, ops, kind)

		if err := u.write(path, lines); err != nil {
			return err
		}
	}
	return nil
}

// UpdateService patches the service class: required-field guards go into the
// validation methods, mappings into the entity conversion methods, and every
// accessor call of a removed field is dropped.
func (u *Updater) UpdateService(svc project.Service, ops []fieldops.Operation) error {
	path := filepath.Join(u.ProjectRoot, svc.ServicePath())
	st := u.parse(path)
	if st == nil {
		return nil
	}

	lines := append([]string(nil), st.Lines...)
	for _, op := range ops {
		switch op.Action {
		case fieldops.ActionAdd:
			if op.Field.Rules().Required {
				lines = insertIntoMethod(lines, []string{"validateCreateRequest", "validateUpdateRequest"}, true,
					func(string) []string { return requiredFieldCheck(*op.Field) })
			}
			lines = u.addFieldMapping(lines, *op.Field, svc)
		case fieldops.ActionRemove:
			lines = removeAccessorCalls(lines, op.FieldName)
		}
	}

	return u.write(path, lines)
}

// addFieldMapping appends the request-to-entity and entity-to-response
// assignments at the end of the conversion methods.
func (u *Updater) addFieldMapping(lines []string, f fieldops.Field, svc project.Service) []string {
	pascal := strutil.ToPascal(f.Name)
	entityVar := strings.ToLower(svc.EntityName())

	return insertIntoMethod(lines, []string{"createEntityFromRequest", "convertToResponse"}, false,
		func(marker string) []string {
			if marker == "createEntityFromRequest" {
				if f.AutoGenerated {
					return nil
				}
				return []string{fmt.Sprintf("        %s.set%s(request.get%s());", entityVar, pascal, pascal)}
			}
			return []string{fmt.Sprintf("        response.set%s(%s.get%s());", pascal, entityVar, pascal)}
		})
}

// UpdateRepository appends derived finder declarations for each added string
// field before the interface's closing brace.
func (u *Updater) UpdateRepository(svc project.Service, ops []fieldops.Operation) error {
	path := filepath.Join(u.ProjectRoot, svc.RepositoryPath())
	content, err := os.ReadFile(path)
	if err != nil {
		log.Printf("warning: repository file not found: %s", path)
		return nil
	}

	var methods []string
	for _, op := range ops {
		if op.Action != fieldops.ActionAdd {
			continue
		}
		f := *op.Field
		if f.JavaType != "String" || f.Rules().MaxLength > 255 {
			continue
		}
		methods = append(methods, finderMethods(svc.EntityName(), f)...)
	}
	if len(methods) == 0 {
		return nil
	}

	text := string(content)
	closing := strings.LastIndex(text, "}")
	if closing < 0 {
		log.Printf("warning: no insertion point in repository file: %s", path)
		return nil
	}

	updated := text[:closing] + strings.Join(methods, "\n") + "\n" + text[closing:]
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReviewTests inspects the service test for fixture additions that the new
// fields would need. The builder calls are reported, not applied; generated
// edits to hand-written tests are too likely to break them.
func (u *Updater) ReviewTests(svc project.Service, ops []fieldops.Operation) []string {
	path := filepath.Join(u.ProjectRoot, svc.ServiceTestPath())
	if _, err := os.Stat(path); err != nil {
		log.Printf("warning: test file not found: %s", path)
		return nil
	}

	var updates []string
	for _, op := range ops {
		if op.Action != fieldops.ActionAdd || op.Field.AutoGenerated {
			continue
		}
		f := *op.Field
		updates = append(updates, fmt.Sprintf("        .%s(%s)",
			strutil.ToCamel(f.Name), strutil.TestValue(f.JavaType, f.Name)))
	}
	if len(updates) > 0 {
		log.Printf("test fixture updates identified for %s (manual review recommended)", path)
	}
	return updates
}

// WriteFrontendNotes writes a notes file describing the TypeScript interface
// changes the frontend needs, for manual integration. No frontend source is
// modified. Returns the notes path, empty when no operation affects the
// interface.
func (u *Updater) WriteFrontendNotes(svc project.Service, ops []fieldops.Operation) (string, error) {
	var entries []string
	for _, op := range ops {
		switch op.Action {
		case fieldops.ActionAdd:
			if op.Field.AutoGenerated {
				continue
			}
			f := *op.Field
			entries = append(entries, fmt.Sprintf("  %s: %s;  // %s",
				strutil.ToCamel(f.Name), strutil.TypeScriptType(f.JavaType), f.Description))
		case fieldops.ActionRemove:
			entries = append(entries, "  // REMOVED: "+strutil.ToCamel(op.FieldName))
		}
	}
	if len(entries) == 0 {
		return "", nil
	}

	frontendDir := filepath.Join(u.ProjectRoot, project.FrontendDir)
	if err := os.MkdirAll(frontendDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create frontend directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Interface updates for %s\n", svc.EntityName())
	fmt.Fprintf(&b, "// Generated: %s\n\n", u.now().Format("2006-01-02 15:04:05"))
	b.WriteString("// Add these fields to your TypeScript interfaces:\n\n")
	for _, entry := range entries {
		b.WriteString(entry + "\n")
	}

	path := filepath.Join(frontendDir, svc.EntityName()+"_interface_updates.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// insertionPoint says where new field blocks go when a file has no fields yet.
type insertionPoint struct {
	afterLastField bool
	classMarker    string // entity name expected on the class line, model only
}

// applyFieldOps runs the add/remove/update field edits over a parsed file.
// Operations run in reverse request order so that the line numbers captured
// at parse time stay valid for the edits still pending.
func applyFieldOps(st *javasrc.Structure, ops []fieldops.Operation, at insertionPoint, render func(fieldops.Field) []string) []string {
	lines := append([]string(nil), st.Lines...)

	classStart := -1
	if at.classMarker != "" {
		for i, line := range lines {
			if strings.Contains(line, "public class") && strings.Contains(line, at.classMarker) {
				classStart = i
				break
			}
		}
	}
	lastFieldLine := st.LastFieldLine()

	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		switch op.Action {
		case fieldops.ActionAdd:
			block := render(*op.Field)
			if block == nil {
				continue
			}
			insertAt := classStart + 2
			if lastFieldLine > -1 {
				insertAt = lastFieldLine + 1
			} else if classStart < 0 {
				insertAt = len(lines) - 5
				if insertAt < 0 {
					insertAt = 0
				}
			}
			lines = insertLines(lines, insertAt, block)
			lastFieldLine += len(block)

		case fieldops.ActionRemove:
			if f, ok := st.FieldByName(op.FieldName); ok {
				lines = removeFieldBlock(lines, f.Line)
			}

		case fieldops.ActionUpdate:
			f, ok := st.FieldByName(op.FieldName)
			if !ok {
				continue
			}
			if op.Changes.Type != "" {
				lines[f.Line] = retypeDeclaration(lines[f.Line], op.FieldName, strutil.JavaType(op.Changes.Type))
			}
			if op.Changes.Validation != nil {
				lines = replaceValidationAnnotations(lines, f.Line, *op.Changes.Validation)
			}
		}
	}

	return lines
}

// removeFieldBlock drops the declaration at fieldLine together with the
// contiguous annotations, javadoc, and blank lines above it.
func removeFieldBlock(lines []string, fieldLine int) []string {
	start := fieldLine
	for start > 0 {
		trimmed := strings.TrimSpace(lines[start-1])
		if strings.HasPrefix(trimmed, "@") || strings.HasPrefix(trimmed, "*") ||
			strings.HasPrefix(trimmed, "/**") || trimmed == "" {
			start--
		} else {
			break
		}
	}
	return append(lines[:start], lines[fieldLine+1:]...)
}

// retypeDeclaration rewrites the type on a private field declaration line.
func retypeDeclaration(line, fieldName, javaType string) string {
	pattern := regexp.MustCompile(`private\s+[\w.]+(?:<.*?>)?\s+` + regexp.QuoteMeta(fieldName) + `;`)
	return pattern.ReplaceAllString(line, fmt.Sprintf("private %s %s;", javaType, fieldName))
}

// replaceValidationAnnotations strips the bean-validation annotations above a
// field and writes the ones the new rules call for.
func replaceValidationAnnotations(lines []string, fieldLine int, rules fieldops.ValidationRules) []string {
	for i := fieldLine - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, "@") {
			break
		}
		if strings.Contains(trimmed, "@NotNull") || strings.Contains(trimmed, "@Size") ||
			strings.Contains(trimmed, "@DecimalMin") || strings.Contains(trimmed, "@DecimalMax") {
			lines = append(lines[:i], lines[i+1:]...)
			fieldLine--
		}
	}

	var fresh []string
	if rules.Required {
		fresh = append(fresh, "    @NotNull(message = \"Field is required\")")
	}
	if rules.MaxLength > 0 {
		fresh = append(fresh, fmt.Sprintf("    @Size(max = %d, message = \"Field too long\")", rules.MaxLength))
	}
	return insertLines(lines, fieldLine, fresh)
}

// appendAccessors inserts getter/setter pairs for added fields before the
// class closing brace.
func appendAccessors(lines []string, ops []fieldops.Operation, kind DTOKind) []string {
	classEnd := len(lines) - 2
	if classEnd < 0 {
		classEnd = 0
	}

	for _, op := range ops {
		if op.Action != fieldops.ActionAdd {
			continue
		}
		if kind == DTORequest && op.Field.AutoGenerated {
			continue
		}
		pair := accessorPair(*op.Field)
		lines = insertLines(lines, classEnd, pair)
		classEnd += len(pair)
	}
	return lines
}

// insertIntoMethod scans for lines containing any marker, walks braces to the
// method's closing line, and inserts the rendered block just before it. With
// once set only the first matching method is patched.
func insertIntoMethod(lines []string, markers []string, once bool, render func(marker string) []string) []string {
	for i := 0; i < len(lines); i++ {
		marker := matchMarker(lines[i], markers)
		if marker == "" {
			continue
		}
		end := methodEnd(lines, i)
		if end < 0 {
			continue
		}
		block := render(marker)
		if len(block) > 0 {
			at := end
			// Keep inserted statements ahead of a trailing return.
			if at > 0 && strings.HasPrefix(strings.TrimSpace(lines[at-1]), "return ") {
				at--
			}
			lines = insertLines(lines, at, block)
			end += len(block)
		}
		if once {
			break
		}
		i = end
	}
	return lines
}

func matchMarker(line string, markers []string) string {
	for _, m := range markers {
		if strings.Contains(line, m) {
			return m
		}
	}
	return ""
}

// methodEnd walks brace depth from the method signature line to the line
// holding its closing brace. Returns -1 when the braces never balance.
func methodEnd(lines []string, start int) int {
	depth := 0
	opened := false
	for j := start; j < len(lines); j++ {
		depth += strings.Count(lines[j], "{")
		if depth > 0 {
			opened = true
		}
		depth -= strings.Count(lines[j], "}")
		if opened && depth <= 0 {
			return j
		}
	}
	return -1
}

// removeAccessorCalls drops every line invoking the field's getter or setter.
func removeAccessorCalls(lines []string, fieldName string) []string {
	pascal := strutil.ToPascal(fieldName)
	getter := "get" + pascal + "()"
	setter := "set" + pascal + "("

	var kept []string
	for _, line := range lines {
		if strings.Contains(line, getter) || strings.Contains(line, setter) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

func insertLines(lines []string, at int, block []string) []string {
	if len(block) == 0 {
		return lines
	}
	if at > len(lines) {
		at = len(lines)
	}
	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:at]...)
	out = append(out, block...)
	out = append(out, lines[at:]...)
	return out
}
