// Package sqlcheck lints migration SQL with the PostgreSQL parser. Syntax is
// checked statement by statement so one broken statement does not mask the
// rest, and destructive operations are flagged from the AST rather than by
// string matching.
package sqlcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Issue is one finding against a SQL file.
type Issue struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"` // "error" or "warning"
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
}

// Result aggregates the issues of a lint run. Valid means no errors; warnings
// alone do not invalidate.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

// NewResult builds a Result from collected issues.
func NewResult(issues []Issue) Result {
	valid := true
	for _, issue := range issues {
		if issue.Severity == "error" {
			valid = false
		}
	}
	return Result{Valid: valid, Issues: issues}
}

// LintFile checks one migration file for syntax errors and destructive
// statements.
func LintFile(path string) []Issue {
	content, err := os.ReadFile(path)
	if err != nil {
		return []Issue{{
			File:     path,
			Line:     1,
			Column:   1,
			Severity: "error",
			Message:  fmt.Sprintf("Failed to read file: %v", err),
			Code:     "file_read_error",
		}}
	}

	issues := checkSyntax(path, string(content))
	issues = append(issues, checkDestructive(path, string(content))...)
	return issues
}

// LintDir lints every .sql file directly inside dir, in name order, which for
// versioned migrations is application order.
func LintDir(dir string) ([]Issue, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	var issues []Issue
	for _, name := range files {
		issues = append(issues, LintFile(filepath.Join(dir, name))...)
	}
	return issues, nil
}

// checkSyntax parses the file, falling back to per-statement parsing when the
// whole file fails so every broken statement is reported with its line.
func checkSyntax(path, content string) []Issue {
	if _, err := pg_query.Parse(content); err == nil {
		return nil
	}

	var issues []Issue
	for _, stmt := range splitStatements(content) {
		if isBlankOrComment(stmt.sql) {
			continue
		}
		if _, err := pg_query.Parse(stmt.sql); err != nil {
			issues = append(issues, Issue{
				File:     path,
				Line:     stmt.startLine,
				Column:   1,
				Severity: "error",
				Message:  fmt.Sprintf("Syntax error: %v", err),
				Code:     "syntax_error",
			})
		}
	}
	return issues
}

func isBlankOrComment(sql string) bool {
	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
			return false
		}
	}
	return true
}

// checkDestructive walks the AST for operations that lose data. DROP COLUMN
// is a warning because a column drop can be intentional after manual
// confirmation; the rest are errors a generated migration must never contain.
func checkDestructive(path, content string) []Issue {
	tree, err := pg_query.Parse(content)
	if err != nil {
		// Unparseable content is reported by checkSyntax.
		return nil
	}

	var issues []Issue
	for _, raw := range tree.Stmts {
		if raw.Stmt == nil {
			continue
		}
		line := lineAtOffset(content, int(raw.StmtLocation))

		switch node := raw.Stmt.Node.(type) {
		case *pg_query.Node_DropStmt:
			if node.DropStmt.RemoveType == pg_query.ObjectType_OBJECT_TABLE {
				issues = append(issues, Issue{
					File:     path,
					Line:     line,
					Column:   1,
					Severity: "error",
					Message: fmt.Sprintf("DROP TABLE %s permanently deletes all rows of the table",
						objectName(node.DropStmt.Objects)),
					Code: "destructive_drop_table",
				})
			}

		case *pg_query.Node_TruncateStmt:
			issues = append(issues, Issue{
				File:     path,
				Line:     line,
				Column:   1,
				Severity: "error",
				Message: fmt.Sprintf("TRUNCATE %s deletes all rows and cannot be rolled back easily",
					strings.Join(relationNames(node.TruncateStmt.Relations), ", ")),
				Code: "destructive_truncate",
			})

		case *pg_query.Node_DeleteStmt:
			if node.DeleteStmt.WhereClause == nil {
				issues = append(issues, Issue{
					File:     path,
					Line:     line,
					Column:   1,
					Severity: "error",
					Message: fmt.Sprintf("DELETE FROM %s without a WHERE clause removes every row",
						rangeVarName(node.DeleteStmt.Relation)),
					Code: "destructive_delete_all",
				})
			}

		case *pg_query.Node_AlterTableStmt:
			table := rangeVarName(node.AlterTableStmt.Relation)
			for _, cmd := range node.AlterTableStmt.Cmds {
				alterCmd, ok := cmd.Node.(*pg_query.Node_AlterTableCmd)
				if !ok {
					continue
				}
				if alterCmd.AlterTableCmd.Subtype == pg_query.AlterTableType_AT_DropColumn {
					issues = append(issues, Issue{
						File:     path,
						Line:     line,
						Column:   1,
						Severity: "warning",
						Message: fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s loses the column's data; confirm before applying",
							table, alterCmd.AlterTableCmd.Name),
						Code: "destructive_drop_column",
					})
				}
			}
		}
	}
	return issues
}

type statement struct {
	sql       string
	startLine int
}

// splitStatements splits on semicolons outside quotes and comments, keeping
// the line each statement starts on for error reporting.
func splitStatements(sql string) []statement {
	var statements []statement
	var current strings.Builder
	currentLine := 1
	startLine := 1
	seenContent := false

	inSingle := false
	inDouble := false
	inLineComment := false
	inBlockComment := false

	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if ch == '\n' {
			currentLine++
			inLineComment = false
		}

		if !inSingle && !inDouble {
			if !inBlockComment && i+1 < len(runes) && ch == '-' && runes[i+1] == '-' {
				inLineComment = true
			}
			if !inLineComment && i+1 < len(runes) && ch == '/' && runes[i+1] == '*' {
				inBlockComment = true
			}
			if inBlockComment && i+1 < len(runes) && ch == '*' && runes[i+1] == '/' {
				inBlockComment = false
				current.WriteRune(ch)
				i++
				current.WriteRune(runes[i])
				continue
			}
		}

		if !inLineComment && !inBlockComment {
			if ch == '\'' && (i == 0 || runes[i-1] != '\\') {
				inSingle = !inSingle
			}
			if ch == '"' && (i == 0 || runes[i-1] != '\\') {
				inDouble = !inDouble
			}
		}

		if ch == ';' && !inSingle && !inDouble && !inLineComment && !inBlockComment {
			current.WriteRune(ch)
			statements = append(statements, statement{sql: current.String(), startLine: startLine})
			current.Reset()
			seenContent = false
			continue
		}

		if !seenContent && !inLineComment && !inBlockComment {
			if ch != ' ' && ch != '\t' && ch != '\n' && ch != '\r' {
				startLine = currentLine
				seenContent = true
			}
		}

		current.WriteRune(ch)
	}

	if current.Len() > 0 {
		statements = append(statements, statement{sql: current.String(), startLine: startLine})
	}
	return statements
}

// lineAtOffset maps a statement's byte offset to its line, skipping the
// whitespace the parser includes between statements.
func lineAtOffset(content string, offset int) int {
	if offset < 0 {
		return 1
	}
	if offset > len(content) {
		offset = len(content)
	}
	for offset < len(content) && (content[offset] == ' ' || content[offset] == '\t' ||
		content[offset] == '\n' || content[offset] == '\r') {
		offset++
	}
	line := 1
	for i := 0; i < offset; i++ {
		if content[i] == '\n' {
			line++
		}
	}
	return line
}

func objectName(objects []*pg_query.Node) string {
	if len(objects) == 0 {
		return "unknown"
	}
	if list, ok := objects[0].Node.(*pg_query.Node_List); ok {
		var names []string
		for _, item := range list.List.Items {
			if str, ok := item.Node.(*pg_query.Node_String_); ok {
				names = append(names, str.String_.Sval)
			}
		}
		return strings.Join(names, ".")
	}
	return "unknown"
}

func relationNames(relations []*pg_query.Node) []string {
	names := make([]string, 0, len(relations))
	for _, rel := range relations {
		if rangeVar, ok := rel.Node.(*pg_query.Node_RangeVar); ok {
			names = append(names, rangeVarName(rangeVar.RangeVar))
		} else {
			names = append(names, "unknown")
		}
	}
	return names
}

func rangeVarName(rangeVar *pg_query.RangeVar) string {
	if rangeVar == nil {
		return "unknown"
	}
	if rangeVar.Schemaname != "" {
		return rangeVar.Schemaname + "." + rangeVar.Relname
	}
	return rangeVar.Relname
}
