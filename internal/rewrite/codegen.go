package rewrite

import (
	"fmt"
	"strings"

	"github.com/viraforge/viraforge/internal/fieldops"
	"github.com/viraforge/viraforge/internal/strutil"
)

// DTOKind selects which side of the API contract a DTO block is generated for.
type DTOKind string

const (
	DTORequest  DTOKind = "request"
	DTOResponse DTOKind = "response"
)

func fieldDescription(f fieldops.Field) string {
	if f.Description != "" {
		return f.Description
	}
	return f.Name
}

// modelFieldBlock renders the javadoc, JPA annotations, validation annotations,
// and declaration for one new entity field. Lines are indented for insertion
// into a class body and the block ends with a blank separator line.
func modelFieldBlock(f fieldops.Field) []string {
	rules := f.Rules()
	block := []string{
		"    /**",
		"     * " + fieldDescription(f),
		"     */",
	}

	if f.PrimaryKey {
		block = append(block, "    @Id")
		if f.AutoGenerated {
			block = append(block, "    @GeneratedValue(strategy = GenerationType.IDENTITY)")
		}
	}
	if f.Name == "created_at" && f.AutoGenerated {
		block = append(block, "    @CreationTimestamp")
	} else if f.Name == "updated_at" && f.UpdateOnModify {
		block = append(block, "    @UpdateTimestamp")
	}

	columnParts := []string{fmt.Sprintf("name = %q", f.Name)}
	if !f.IsNullable() {
		columnParts = append(columnParts, "nullable = false")
	}
	if rules.MaxLength > 0 {
		columnParts = append(columnParts, fmt.Sprintf("length = %d", rules.MaxLength))
	}
	block = append(block, fmt.Sprintf("    @Column(%s)", strings.Join(columnParts, ", ")))

	title := strutil.Title(f.Name)
	if rules.Required {
		block = append(block, fmt.Sprintf("    @NotNull(message = \"%s is required\")", title))
	}
	if f.JavaType == "String" && rules.MaxLength > 0 {
		block = append(block, fmt.Sprintf(
			"    @Size(max = %d, message = \"%s cannot exceed %d characters\")",
			rules.MaxLength, title, rules.MaxLength))
	}
	if rules.Min != nil && isNumericJavaType(f.JavaType) {
		block = append(block, fmt.Sprintf(
			"    @DecimalMin(value = \"%s\", message = \"%s must be at least %s\")",
			formatNumber(*rules.Min), title, formatNumber(*rules.Min)))
	}

	block = append(block,
		fmt.Sprintf("    private %s %s;", f.JavaType, strutil.ToCamel(f.Name)),
		"")
	return block
}

// dtoFieldBlock renders the documentation annotations, json binding, bean
// validation (request side only), and declaration for one new DTO field.
func dtoFieldBlock(f fieldops.Field, kind DTOKind) []string {
	rules := f.Rules()
	description := fieldDescription(f)

	block := []string{
		"    /**",
		"     * " + description,
		"     */",
	}

	required := "false"
	if rules.Required && kind == DTORequest {
		required = "true"
	}
	block = append(block,
		fmt.Sprintf("    @Schema(description = %q,", description),
		fmt.Sprintf("            required = %s,", required))
	if rules.MaxLength > 0 {
		block = append(block, fmt.Sprintf("            maxLength = %d,", rules.MaxLength))
	}
	block = append(block,
		fmt.Sprintf("            example = %q)", strutil.ExampleValue(f.JavaType, f.Name)),
		fmt.Sprintf("    @JsonProperty(%q)", f.Name))

	if kind == DTORequest {
		title := strutil.Title(f.Name)
		if rules.Required {
			block = append(block, fmt.Sprintf("    @NotNull(message = \"%s is required\")", title))
			if f.JavaType == "String" {
				block = append(block, fmt.Sprintf("    @NotBlank(message = \"%s cannot be blank\")", title))
			}
		}
		if f.JavaType == "String" && rules.MaxLength > 0 {
			block = append(block, fmt.Sprintf(
				"    @Size(max = %d, message = \"%s cannot exceed %d characters\")",
				rules.MaxLength, title, rules.MaxLength))
		}
	}

	block = append(block,
		fmt.Sprintf("    private %s %s;", f.JavaType, strutil.ToCamel(f.Name)),
		"")
	return block
}

// accessorPair renders a documented getter and setter for one field.
func accessorPair(f fieldops.Field) []string {
	camel := strutil.ToCamel(f.Name)
	pascal := strutil.ToPascal(f.Name)
	doc := strings.ToLower(fieldDescription(f))

	return []string{
		"    /**",
		"     * Get " + doc + ".",
		"     * ",
		"     * @return " + doc,
		"     */",
		fmt.Sprintf("    public %s get%s() {", f.JavaType, pascal),
		fmt.Sprintf("        return %s;", camel),
		"    }",
		"",
		"    /**",
		"     * Set " + doc + ".",
		"     * ",
		fmt.Sprintf("     * @param %s %s", camel, doc),
		"     */",
		fmt.Sprintf("    public void set%s(%s %s) {", pascal, f.JavaType, camel),
		fmt.Sprintf("        this.%s = %s;", camel, camel),
		"    }",
	}
}

// finderMethods renders the derived-query declarations added to a repository
// interface for a new searchable string field.
func finderMethods(entity string, f fieldops.Field) []string {
	camel := strutil.ToCamel(f.Name)
	pascal := strutil.ToPascal(f.Name)
	words := strutil.Humanize(f.Name)
	lower := strings.ToLower(entity)

	return []string{
		"",
		"    /**",
		fmt.Sprintf("     * Find %ss by %s.", lower, words),
		"     * ",
		fmt.Sprintf("     * @param %s the %s", camel, words),
		fmt.Sprintf("     * @return list of %ss", lower),
		"     */",
		fmt.Sprintf("    List<%s> findBy%s(String %s);", entity, pascal, camel),
		"    ",
		"    /**",
		fmt.Sprintf("     * Find %ss by %s containing text (case-insensitive).", lower, words),
		"     * ",
		fmt.Sprintf("     * @param %s the %s to search for", camel, words),
		fmt.Sprintf("     * @return list of %ss", lower),
		"     */",
		fmt.Sprintf("    List<%s> findBy%sContainingIgnoreCase(String %s);", entity, pascal, camel),
	}
}

// requiredFieldCheck renders the null or blank guard inserted into a service
// validation method for a required field.
func requiredFieldCheck(f fieldops.Field) []string {
	pascal := strutil.ToPascal(f.Name)
	title := strutil.Title(f.Name)

	if f.JavaType == "String" {
		return []string{
			fmt.Sprintf("        if (!StringUtils.hasText(request.get%s())) {", pascal),
			fmt.Sprintf("            throw new BusinessException(\"%s is required\");", title),
			"        }",
		}
	}
	return []string{
		fmt.Sprintf("        if (request.get%s() == null) {", pascal),
		fmt.Sprintf("            throw new BusinessException(\"%s is required\");", title),
		"        }",
	}
}

func isNumericJavaType(javaType string) bool {
	switch javaType {
	case "BigDecimal", "Integer", "Long":
		return true
	}
	return false
}

// formatNumber prints a float the way it was declared: no trailing zeros,
// integers without a decimal point.
func formatNumber(v float64) string {
	s := fmt.Sprintf("%g", v)
	return s
}
