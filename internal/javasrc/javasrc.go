// Package javasrc recovers a structural index of a Java source file by
// pattern scanning. It is a best-effort heuristic, not a grammar parse:
// nested braces, multi-line annotations, and nested generic parameters are
// not guaranteed to be recognized.
package javasrc

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Field is one declared field with its surrounding annotation and doc lines.
type Field struct {
	Name        string
	Type        string
	Annotations []string
	Doc         []string
	Line        int // zero-based index into Structure.Lines
}

// Method is one declared method.
type Method struct {
	Name       string
	ReturnType string
	Line       int
	Signature  string
}

// Structure is the parsed-out view of one file. Derived fresh from content on
// every call, never cached.
type Structure struct {
	Path        string
	Lines       []string
	Package     string
	Imports     []string
	ClassName   string
	Fields      []Field
	Methods     []Method
	Annotations []string // class-level
}

// FieldByName returns the named field, if declared.
func (s *Structure) FieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// LastFieldLine returns the line index of the last field declaration, or -1.
func (s *Structure) LastFieldLine() int {
	last := -1
	for _, f := range s.Fields {
		if f.Line > last {
			last = f.Line
		}
	}
	return last
}

// Extractor is the capability boundary for structural extraction, so the
// scanner can later be swapped for a real parser without changing callers.
type Extractor interface {
	Extract(content string) *Structure
}

// ParseError is a typed failure to read a source file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseFile reads path and extracts its structure. Missing or unreadable
// files yield a *ParseError.
func ParseFile(e Extractor, path string) (*Structure, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	st := e.Extract(string(content))
	st.Path = path
	return st, nil
}

// ScanExtractor is the pattern-based Extractor implementation.
type ScanExtractor struct {
	classRe  *regexp.Regexp
	fieldRe  *regexp.Regexp
	methodRe *regexp.Regexp
}

// NewScanExtractor returns the default line-pattern scanner.
func NewScanExtractor() *ScanExtractor {
	return &ScanExtractor{
		classRe:  regexp.MustCompile(`public\s+class\s+(\w+)`),
		fieldRe:  regexp.MustCompile(`private\s+([\w.]+(?:<.*?>)?)\s+(\w+);`),
		methodRe: regexp.MustCompile(`public\s+([\w.]+(?:<.*?>)?)\s+(\w+)\s*\([^)]*\)`),
	}
}

var (
	packageRe = regexp.MustCompile(`package\s+([\w.]+);`)
	importRe  = regexp.MustCompile(`import\s+([\w.*]+);`)
)

// Extract scans content line by line and builds the structural index.
func (e *ScanExtractor) Extract(content string) *Structure {
	lines := strings.Split(content, "\n")
	st := &Structure{Lines: lines}

	if m := packageRe.FindStringSubmatch(content); m != nil {
		st.Package = m[1]
	}
	for _, m := range importRe.FindAllStringSubmatch(content, -1) {
		st.Imports = append(st.Imports, m[1])
	}
	if m := e.classRe.FindStringSubmatch(content); m != nil {
		st.ClassName = m[1]
	}

	st.Fields = e.extractFields(lines)
	st.Methods = e.extractMethods(lines)
	st.Annotations = extractClassAnnotations(lines)

	return st
}

func (e *ScanExtractor) extractFields(lines []string) []Field {
	var fields []Field
	for i, line := range lines {
		m := e.fieldRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		field := Field{Name: m[2], Type: m[1], Line: i}

		// Walk backward over contiguous annotation lines, tolerating blanks.
		j := i - 1
		for j >= 0 {
			trimmed := strings.TrimSpace(lines[j])
			if strings.HasPrefix(trimmed, "@") {
				field.Annotations = append([]string{trimmed}, field.Annotations...)
			} else if trimmed != "" {
				break
			}
			j--
		}

		// Then a contiguous doc-comment block.
		for j >= 0 {
			trimmed := strings.TrimSpace(lines[j])
			if strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "/**") {
				field.Doc = append([]string{trimmed}, field.Doc...)
			} else if trimmed != "" {
				break
			}
			j--
		}

		fields = append(fields, field)
	}
	return fields
}

func (e *ScanExtractor) extractMethods(lines []string) []Method {
	var methods []Method
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") {
			continue
		}
		m := e.methodRe.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		methods = append(methods, Method{
			Name:       m[2],
			ReturnType: m[1],
			Line:       i,
			Signature:  trimmed,
		})
	}
	return methods
}

func extractClassAnnotations(lines []string) []string {
	var annotations []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(trimmed, "public class") {
			break
		}
		if strings.HasPrefix(trimmed, "@") {
			annotations = append(annotations, trimmed)
		}
	}
	return annotations
}
