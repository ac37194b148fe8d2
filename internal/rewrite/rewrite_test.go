package rewrite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/viraforge/viraforge/internal/fieldops"
	"github.com/viraforge/viraforge/internal/project"
)

var svc = project.Service{Name: "product", Table: "products"}

const modelSource = `package com.vira.product.model;

import javax.persistence.*;

@Entity
@Table(name = "products")
public class Product {

    @Id
    @GeneratedValue(strategy = GenerationType.IDENTITY)
    private Long id;

    @Column(name = "name", nullable = false)
    private String name;

    @Column(name = "sku")
    private String sku;

    public Long getId() {
        return id;
    }
}
`

const serviceSource = `package com.vira.product.service;

public class ProductService {

    private void validateCreateRequest(ProductRequest request) {
        if (request == null) {
            throw new BusinessException("Request is required");
        }
    }

    private Product createEntityFromRequest(ProductRequest request) {
        Product product = new Product();
        product.setName(request.getName());
        product.setSku(request.getSku());
        return product;
    }

    private ProductResponse convertToResponse(Product product) {
        ProductResponse response = new ProductResponse();
        response.setName(product.getName());
        response.setSku(product.getSku());
        return response;
    }
}
`

const repositorySource = `package com.vira.product.repository;

import java.util.List;
import org.springframework.data.jpa.repository.JpaRepository;

public interface ProductRepository extends JpaRepository<Product, Long> {

    List<Product> findByName(String name);
}
`

func newTestUpdater(t *testing.T) *Updater {
	t.Helper()
	u := NewUpdater(t.TempDir())
	u.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	return u
}

func seed(t *testing.T, u *Updater, rel, content string) string {
	t.Helper()
	path := filepath.Join(u.ProjectRoot, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func addOp(f fieldops.Field) fieldops.Operation {
	return fieldops.Operation{Action: fieldops.ActionAdd, Field: &f}
}

func TestUpdateModelAddsFieldAfterLastField(t *testing.T) {
	u := newTestUpdater(t)
	path := seed(t, u, svc.ModelPath(), modelSource)

	op := addOp(fieldops.Field{
		Name:        "discount_rate",
		Type:        "DECIMAL(5,2)",
		JavaType:    "BigDecimal",
		Nullable:    boolPtr(false),
		Description: "Discount percentage",
		Validation:  &fieldops.ValidationRules{Required: true, Min: floatPtr(0)},
	})

	if err := u.UpdateModel(svc, []fieldops.Operation{op}); err != nil {
		t.Fatalf("UpdateModel: %v", err)
	}

	content := read(t, path)
	if !strings.Contains(content, "private BigDecimal discountRate;") {
		t.Error("declaration missing or not camel-cased")
	}
	if !strings.Contains(content, `@Column(name = "discount_rate", nullable = false)`) {
		t.Errorf("column annotation wrong:\n%s", content)
	}
	if !strings.Contains(content, `@NotNull(message = "Discount Rate is required")`) {
		t.Error("required annotation missing")
	}
	if !strings.Contains(content, `@DecimalMin(value = "0"`) {
		t.Error("minimum annotation missing")
	}

	// New field lands after the last existing field, before the methods.
	declIdx := strings.Index(content, "private BigDecimal discountRate;")
	skuIdx := strings.Index(content, "private String sku;")
	getterIdx := strings.Index(content, "public Long getId()")
	if declIdx < skuIdx || declIdx > getterIdx {
		t.Error("field inserted at the wrong position")
	}
}

func TestUpdateModelRemovesFieldBlock(t *testing.T) {
	u := newTestUpdater(t)
	path := seed(t, u, svc.ModelPath(), modelSource)

	op := fieldops.Operation{Action: fieldops.ActionRemove, FieldName: "sku"}
	if err := u.UpdateModel(svc, []fieldops.Operation{op}); err != nil {
		t.Fatalf("UpdateModel: %v", err)
	}

	content := read(t, path)
	if strings.Contains(content, "private String sku;") {
		t.Error("field declaration not removed")
	}
	if strings.Contains(content, `@Column(name = "sku")`) {
		t.Error("field annotation not removed")
	}
	if !strings.Contains(content, "private String name;") {
		t.Error("unrelated field damaged")
	}
}

func TestUpdateModelRetypesField(t *testing.T) {
	u := newTestUpdater(t)
	path := seed(t, u, svc.ModelPath(), modelSource)

	op := fieldops.Operation{
		Action:    fieldops.ActionUpdate,
		FieldName: "sku",
		Changes:   &fieldops.Changes{Type: "BIGINT"},
	}
	if err := u.UpdateModel(svc, []fieldops.Operation{op}); err != nil {
		t.Fatalf("UpdateModel: %v", err)
	}

	content := read(t, path)
	if !strings.Contains(content, "private Long sku;") {
		t.Errorf("declaration not retyped:\n%s", content)
	}
	if strings.Contains(content, "private String sku;") {
		t.Error("old declaration still present")
	}
}

func TestUpdateModelMissingFileIsNotFatal(t *testing.T) {
	u := newTestUpdater(t)
	op := fieldops.Operation{Action: fieldops.ActionRemove, FieldName: "sku"}
	if err := u.UpdateModel(svc, []fieldops.Operation{op}); err != nil {
		t.Errorf("missing model file must be skipped, got %v", err)
	}
}

func TestUpdateDTOsSkipsAutoGeneratedOnRequest(t *testing.T) {
	u := newTestUpdater(t)
	reqSource := `package com.vira.product.dto;

public class ProductRequest {

    private String name;

}
`
	respSource := `package com.vira.product.dto;

public class ProductResponse {

    private String name;

}
`
	reqPath := seed(t, u, svc.RequestDTOPath(), reqSource)
	respPath := seed(t, u, svc.ResponseDTOPath(), respSource)

	op := addOp(fieldops.Field{
		Name:          "created_at",
		Type:          "TIMESTAMP",
		JavaType:      "LocalDateTime",
		AutoGenerated: true,
	})
	if err := u.UpdateDTOs(svc, []fieldops.Operation{op}); err != nil {
		t.Fatalf("UpdateDTOs: %v", err)
	}

	if strings.Contains(read(t, reqPath), "createdAt") {
		t.Error("auto-generated field must not appear in the request DTO")
	}
	resp := read(t, respPath)
	if !strings.Contains(resp, "private LocalDateTime createdAt;") {
		t.Errorf("response DTO missing field:\n%s", resp)
	}
	if !strings.Contains(resp, "public LocalDateTime getCreatedAt()") {
		t.Error("response DTO missing getter")
	}
}

func TestUpdateDTOsRequestValidationAnnotations(t *testing.T) {
	u := newTestUpdater(t)
	reqSource := `package com.vira.product.dto;

public class ProductRequest {

    private String name;

}
`
	reqPath := seed(t, u, svc.RequestDTOPath(), reqSource)

	op := addOp(fieldops.Field{
		Name:       "supplier_code",
		Type:       "VARCHAR(64)",
		JavaType:   "String",
		Validation: &fieldops.ValidationRules{Required: true, MaxLength: 64},
	})
	if err := u.UpdateDTOs(svc, []fieldops.Operation{op}); err != nil {
		t.Fatalf("UpdateDTOs: %v", err)
	}

	content := read(t, reqPath)
	for _, want := range []string{
		`@JsonProperty("supplier_code")`,
		`@NotNull(message = "Supplier Code is required")`,
		`@NotBlank(message = "Supplier Code cannot be blank")`,
		`@Size(max = 64`,
		"public void setSupplierCode(String supplierCode)",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("request DTO missing %q:\n%s", want, content)
		}
	}
}

func TestUpdateServiceInsertsGuardAndMappings(t *testing.T) {
	u := newTestUpdater(t)
	path := seed(t, u, svc.ServicePath(), serviceSource)

	op := addOp(fieldops.Field{
		Name:       "supplier_code",
		Type:       "VARCHAR(64)",
		JavaType:   "String",
		Validation: &fieldops.ValidationRules{Required: true},
	})
	if err := u.UpdateService(svc, []fieldops.Operation{op}); err != nil {
		t.Fatalf("UpdateService: %v", err)
	}

	content := read(t, path)
	if !strings.Contains(content, "if (!StringUtils.hasText(request.getSupplierCode()))") {
		t.Errorf("validation guard missing:\n%s", content)
	}
	if !strings.Contains(content, "product.setSupplierCode(request.getSupplierCode());") {
		t.Error("request-to-entity mapping missing")
	}
	if !strings.Contains(content, "response.setSupplierCode(product.getSupplierCode());") {
		t.Error("entity-to-response mapping missing")
	}

	// Guard must land inside validateCreateRequest, before its closing brace.
	guardIdx := strings.Index(content, "getSupplierCode())) {")
	createIdx := strings.Index(content, "createEntityFromRequest")
	if guardIdx > createIdx {
		t.Error("guard inserted outside the validation method")
	}
}

func TestUpdateServiceRemovesAccessorCalls(t *testing.T) {
	u := newTestUpdater(t)
	path := seed(t, u, svc.ServicePath(), serviceSource)

	op := fieldops.Operation{Action: fieldops.ActionRemove, FieldName: "sku"}
	if err := u.UpdateService(svc, []fieldops.Operation{op}); err != nil {
		t.Fatalf("UpdateService: %v", err)
	}

	content := read(t, path)
	if strings.Contains(content, "getSku()") || strings.Contains(content, "setSku(") {
		t.Errorf("accessor calls of removed field still present:\n%s", content)
	}
	if !strings.Contains(content, "setName(request.getName())") {
		t.Error("unrelated mapping damaged")
	}
}

func TestUpdateRepositoryAddsFinders(t *testing.T) {
	u := newTestUpdater(t)
	path := seed(t, u, svc.RepositoryPath(), repositorySource)

	ops := []fieldops.Operation{
		addOp(fieldops.Field{
			Name:       "supplier_code",
			Type:       "VARCHAR(64)",
			JavaType:   "String",
			Validation: &fieldops.ValidationRules{MaxLength: 64},
		}),
		// Non-string fields get no finders.
		addOp(fieldops.Field{Name: "stock", Type: "INTEGER", JavaType: "Integer"}),
	}
	if err := u.UpdateRepository(svc, ops); err != nil {
		t.Fatalf("UpdateRepository: %v", err)
	}

	content := read(t, path)
	if !strings.Contains(content, "List<Product> findBySupplierCode(String supplierCode);") {
		t.Errorf("finder missing:\n%s", content)
	}
	if !strings.Contains(content, "findBySupplierCodeContainingIgnoreCase") {
		t.Error("case-insensitive finder missing")
	}
	if strings.Contains(content, "findByStock") {
		t.Error("finder generated for a non-string field")
	}
	if !strings.HasSuffix(strings.TrimSpace(content), "}") {
		t.Error("interface closing brace lost")
	}
}

func TestUpdateRepositoryNoStringFieldsLeavesFileAlone(t *testing.T) {
	u := newTestUpdater(t)
	path := seed(t, u, svc.RepositoryPath(), repositorySource)

	ops := []fieldops.Operation{
		addOp(fieldops.Field{Name: "stock", Type: "INTEGER", JavaType: "Integer"}),
	}
	if err := u.UpdateRepository(svc, ops); err != nil {
		t.Fatal(err)
	}
	if read(t, path) != repositorySource {
		t.Error("repository rewritten without any finder to add")
	}
}

func TestReviewTestsListsFixtureUpdates(t *testing.T) {
	u := newTestUpdater(t)
	seed(t, u, svc.ServiceTestPath(), "public class ProductServiceTest {}\n")

	ops := []fieldops.Operation{
		addOp(fieldops.Field{Name: "supplier_code", Type: "VARCHAR(64)", JavaType: "String"}),
		addOp(fieldops.Field{Name: "created_at", Type: "TIMESTAMP", JavaType: "LocalDateTime", AutoGenerated: true}),
	}
	updates := u.ReviewTests(svc, ops)
	if len(updates) != 1 {
		t.Fatalf("expected 1 fixture update, got %v", updates)
	}
	if !strings.Contains(updates[0], `.supplierCode("test_supplier_code")`) {
		t.Errorf("fixture line = %q", updates[0])
	}
}

func TestWriteFrontendNotes(t *testing.T) {
	u := newTestUpdater(t)

	ops := []fieldops.Operation{
		addOp(fieldops.Field{
			Name:        "discount_rate",
			Type:        "DECIMAL(5,2)",
			JavaType:    "BigDecimal",
			Description: "Discount percentage",
		}),
		{Action: fieldops.ActionRemove, FieldName: "legacy_code"},
	}
	path, err := u.WriteFrontendNotes(svc, ops)
	if err != nil {
		t.Fatalf("WriteFrontendNotes: %v", err)
	}
	if filepath.Base(path) != "Product_interface_updates.txt" {
		t.Errorf("notes path = %s", path)
	}

	content := read(t, path)
	if !strings.Contains(content, "discountRate: number;  // Discount percentage") {
		t.Errorf("interface entry missing:\n%s", content)
	}
	if !strings.Contains(content, "// REMOVED: legacyCode") {
		t.Error("removal note missing")
	}
	if !strings.Contains(content, "// Generated: 2024-06-01 09:00:00") {
		t.Error("timestamp header missing")
	}
}

func TestWriteFrontendNotesNoChanges(t *testing.T) {
	u := newTestUpdater(t)
	ops := []fieldops.Operation{
		addOp(fieldops.Field{Name: "created_at", Type: "TIMESTAMP", JavaType: "LocalDateTime", AutoGenerated: true}),
	}
	path, err := u.WriteFrontendNotes(svc, ops)
	if err != nil {
		t.Fatal(err)
	}
	if path != "" {
		t.Errorf("no notes expected, got %s", path)
	}
}

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }
