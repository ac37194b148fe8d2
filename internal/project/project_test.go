package project

import (
	"strings"
	"testing"
)

func TestEntityNameDefault(t *testing.T) {
	s := Service{Name: "product", Table: "products"}
	if got := s.EntityName(); got != "Product" {
		t.Errorf("EntityName() = %q, want Product", got)
	}

	s.Entity = "CatalogItem"
	if got := s.EntityName(); got != "CatalogItem" {
		t.Errorf("EntityName() = %q, want CatalogItem", got)
	}
}

func TestDependentFiles(t *testing.T) {
	s := Service{Name: "product", Table: "products"}
	files := s.DependentFiles()

	if len(files) != 9 {
		t.Fatalf("expected 9 dependent files, got %d", len(files))
	}

	want := []string{
		"src/main/java/com/vira/product/model/Product.java",
		"src/main/java/com/vira/product/dto/ProductRequest.java",
		"src/main/java/com/vira/product/dto/ProductResponse.java",
		"src/main/java/com/vira/product/service/ProductService.java",
		"src/main/java/com/vira/product/repository/ProductRepository.java",
		"src/main/java/com/vira/product/controller/ProductController.java",
		"src/test/java/com/vira/product/service/ProductServiceTest.java",
		"src/test/java/com/vira/product/controller/ProductControllerTest.java",
		"src/main/resources/frontend/api/productApiService.js",
	}
	for i, w := range want {
		if files[i] != w {
			t.Errorf("DependentFiles()[%d] = %q, want %q", i, files[i], w)
		}
	}
}

func TestDependentFilesIgnoreOperations(t *testing.T) {
	// The list is a function of the service alone.
	a := Service{Name: "order", Table: "orders"}
	b := Service{Name: "order", Table: "orders"}
	fa := a.DependentFiles()
	fb := b.DependentFiles()
	if strings.Join(fa, ";") != strings.Join(fb, ";") {
		t.Errorf("dependent files differ for identical services")
	}
}

func TestSnapshotPaths(t *testing.T) {
	s := Service{Name: "order", Table: "orders"}
	paths := s.SnapshotPaths()

	if len(paths) != 4 {
		t.Fatalf("expected 4 snapshot paths, got %d", len(paths))
	}
	if paths[0] != "src/main/java/com/vira/order" {
		t.Errorf("main tree path = %q", paths[0])
	}
	if paths[3] != MigrationDir {
		t.Errorf("migration path = %q, want %q", paths[3], MigrationDir)
	}
}
