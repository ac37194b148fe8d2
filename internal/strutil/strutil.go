package strutil

import (
	"strings"
)

// ToCamel converts snake_case to camelCase.
func ToCamel(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		parts[i] = Capitalize(parts[i])
	}
	return strings.Join(parts, "")
}

// ToPascal converts snake_case to PascalCase.
func ToPascal(s string) string {
	parts := strings.Split(s, "_")
	for i := range parts {
		parts[i] = Capitalize(parts[i])
	}
	return strings.Join(parts, "")
}

// ToSnake converts camelCase or PascalCase to snake_case.
func ToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Capitalize upper-cases the first letter and leaves the rest alone.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-('a'-'A')) + s[1:]
	}
	return s
}

// Title turns a snake_case identifier into a human-readable title,
// e.g. "discount_rate" -> "Discount Rate".
func Title(s string) string {
	parts := strings.Split(s, "_")
	for i := range parts {
		parts[i] = Capitalize(parts[i])
	}
	return strings.Join(parts, " ")
}

// Humanize turns a snake_case identifier into lower-case words,
// e.g. "discount_rate" -> "discount rate".
func Humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// javaTypes maps base SQL type names to Java types used in generated code.
var javaTypes = map[string]string{
	"BIGSERIAL": "Long",
	"BIGINT":    "Long",
	"SERIAL":    "Integer",
	"INTEGER":   "Integer",
	"DECIMAL":   "BigDecimal",
	"NUMERIC":   "BigDecimal",
	"VARCHAR":   "String",
	"TEXT":      "String",
	"TIMESTAMP": "LocalDateTime",
	"DATE":      "LocalDate",
	"BOOLEAN":   "Boolean",
}

// JavaType maps a SQL column type (possibly parameterized, e.g. "DECIMAL(5,2)")
// to the Java type used in generated sources. Unknown types fall back to String.
func JavaType(sqlType string) string {
	base := sqlType
	if i := strings.Index(base, "("); i >= 0 {
		base = base[:i]
	}
	base = strings.ToUpper(strings.TrimSpace(base))
	if jt, ok := javaTypes[base]; ok {
		return jt
	}
	return "String"
}

// tsTypes maps Java types to TypeScript types for frontend interface notes.
var tsTypes = map[string]string{
	"String":        "string",
	"Boolean":       "boolean",
	"Integer":       "number",
	"Long":          "number",
	"BigDecimal":    "number",
	"LocalDateTime": "string",
	"LocalDate":     "string",
}

// TypeScriptType maps a Java type to its TypeScript equivalent.
// Unknown types fall back to any.
func TypeScriptType(javaType string) string {
	if ts, ok := tsTypes[javaType]; ok {
		return ts
	}
	return "any"
}

// TestValue returns a Java literal suitable for test fixtures of the given type.
func TestValue(javaType, fieldName string) string {
	switch javaType {
	case "String":
		return `"test_` + fieldName + `"`
	case "Boolean":
		return "true"
	case "Integer", "Long":
		return "1"
	case "BigDecimal":
		return `new BigDecimal("100.00")`
	case "LocalDateTime":
		return "LocalDateTime.now()"
	case "LocalDate":
		return "LocalDate.now()"
	default:
		return "null"
	}
}

// ExampleValue returns an example value for API documentation annotations.
func ExampleValue(javaType, fieldName string) string {
	switch javaType {
	case "String":
		return "Sample " + Humanize(fieldName)
	case "BigDecimal":
		return "100.50"
	case "Integer", "Long":
		return "1"
	case "Boolean":
		return "true"
	case "LocalDateTime":
		return "2024-01-15T10:30:00"
	case "LocalDate":
		return "2024-01-15"
	default:
		return "sample"
	}
}
