package project

import (
	"path/filepath"
	"strings"

	"github.com/viraforge/viraforge/internal/strutil"
)

// Path conventions of the generated Spring project tree. Every artifact the
// tool reads or writes is derived from these plus the service name.
const (
	JavaMainRoot = "src/main/java/com/vira"
	JavaTestRoot = "src/test/java/com/vira"
	MigrationDir = "src/main/resources/db/migration"
	FrontendDir  = "src/main/resources/frontend"
)

// Service describes the target service of one invocation. Immutable for the
// duration of a run.
type Service struct {
	Name        string `json:"name"`
	Table       string `json:"table"`
	Entity      string `json:"entity,omitempty"`
	Description string `json:"description,omitempty"`
}

// EntityName returns the configured entity name, defaulting to the
// capitalized service name.
func (s Service) EntityName() string {
	if s.Entity != "" {
		return s.Entity
	}
	return strutil.Capitalize(s.Name)
}

// MainDir is the service's main source tree, relative to the project root.
func (s Service) MainDir() string {
	return filepath.Join(JavaMainRoot, s.Name)
}

// TestDir is the service's test tree, relative to the project root.
func (s Service) TestDir() string {
	return filepath.Join(JavaTestRoot, s.Name)
}

func (s Service) ModelPath() string {
	return filepath.Join(s.MainDir(), "model", s.EntityName()+".java")
}

func (s Service) RequestDTOPath() string {
	return filepath.Join(s.MainDir(), "dto", s.EntityName()+"Request.java")
}

func (s Service) ResponseDTOPath() string {
	return filepath.Join(s.MainDir(), "dto", s.EntityName()+"Response.java")
}

func (s Service) ServicePath() string {
	return filepath.Join(s.MainDir(), "service", s.EntityName()+"Service.java")
}

func (s Service) RepositoryPath() string {
	return filepath.Join(s.MainDir(), "repository", s.EntityName()+"Repository.java")
}

func (s Service) ControllerPath() string {
	return filepath.Join(s.MainDir(), "controller", s.EntityName()+"Controller.java")
}

func (s Service) ServiceTestPath() string {
	return filepath.Join(s.TestDir(), "service", s.EntityName()+"ServiceTest.java")
}

func (s Service) ControllerTestPath() string {
	return filepath.Join(s.TestDir(), "controller", s.EntityName()+"ControllerTest.java")
}

// FrontendAPIPath is the generated frontend API stub for this service.
func (s Service) FrontendAPIPath() string {
	return filepath.Join(FrontendDir, "api", strings.ToLower(s.EntityName())+"ApiService.js")
}

// DependentFiles lists every artifact affected by a field operation against
// this service. The list depends only on the service, never on the operations.
func (s Service) DependentFiles() []string {
	return []string{
		s.ModelPath(),
		s.RequestDTOPath(),
		s.ResponseDTOPath(),
		s.ServicePath(),
		s.RepositoryPath(),
		s.ControllerPath(),
		s.ServiceTestPath(),
		s.ControllerTestPath(),
		s.FrontendAPIPath(),
	}
}

// SnapshotPaths lists the directories captured before any mutation: the
// service's main and test trees, the frontend api directory, and the whole
// migration directory.
func (s Service) SnapshotPaths() []string {
	return []string{
		s.MainDir(),
		s.TestDir(),
		filepath.Join(FrontendDir, "api"),
		MigrationDir,
	}
}
