// Package applier runs the full modify pipeline: analyze, validate, confirm,
// snapshot, then mutate. Any failure after the snapshot restores the project
// from it.
package applier

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/viraforge/viraforge/internal/analyze"
	"github.com/viraforge/viraforge/internal/confirm"
	"github.com/viraforge/viraforge/internal/fieldops"
	"github.com/viraforge/viraforge/internal/migrate"
	"github.com/viraforge/viraforge/internal/project"
	"github.com/viraforge/viraforge/internal/rewrite"
	"github.com/viraforge/viraforge/internal/safety"
	"github.com/viraforge/viraforge/internal/snapshot"
	"github.com/viraforge/viraforge/internal/sqlcheck"
)

// ErrCancelled means the operator declined the confirmation prompt. Nothing
// was mutated and no snapshot was taken.
var ErrCancelled = errors.New("operation cancelled")

// ApplyFailure is a mutation error after the snapshot was taken. Restored
// reports whether the snapshot was rolled back successfully.
type ApplyFailure struct {
	Step     string
	BackupID string
	Restored bool
	Err      error
}

func (e *ApplyFailure) Error() string {
	if e.Restored {
		return fmt.Sprintf("apply failed during %s: %v (project restored from %s)", e.Step, e.Err, e.BackupID)
	}
	return fmt.Sprintf("apply failed during %s: %v", e.Step, e.Err)
}

func (e *ApplyFailure) Unwrap() error { return e.Err }

// RestoreFailure means the apply failed and the snapshot restore failed too.
// The project may be in a partially modified state; the snapshot directory
// still holds the pre-change content.
type RestoreFailure struct {
	BackupID string
	Err      error
}

func (e *RestoreFailure) Error() string {
	return fmt.Sprintf("apply failed (%v) and restoring snapshot %s also failed; "+
		"project may be partially modified, snapshot contents are intact on disk", e.Err, e.BackupID)
}

func (e *RestoreFailure) Unwrap() error { return e.Err }

// ConfirmFunc asks the operator to proceed. destructive marks operation sets
// containing removes.
type ConfirmFunc func(a analyze.Analysis, destructive bool) (bool, error)

// Result is the outcome of one pipeline run.
type Result struct {
	Analysis *analyze.Analysis
	DryRun   bool

	BackupID        string
	MigrationFile   string
	FrontendNotes   string
	TestSuggestions []string
	LintIssues      []sqlcheck.Issue
}

// Applier wires the pipeline stages together for one project.
type Applier struct {
	ProjectRoot  string
	TemplatesDir string

	Confirm   ConfirmFunc
	Snapshots *snapshot.Manager
}

// New returns an Applier with the interactive confirmation gate and snapshots
// under backupsDir.
func New(projectRoot, templatesDir, backupsDir string) *Applier {
	gate := confirm.NewGate()
	return &Applier{
		ProjectRoot:  projectRoot,
		TemplatesDir: templatesDir,
		Confirm:      gate.Confirm,
		Snapshots:    snapshot.NewManager(backupsDir),
	}
}

// Run executes the pipeline for a validated request. Dry runs stop after
// analysis and never touch the project.
func (a *Applier) Run(req *fieldops.Request) (*Result, error) {
	svc := req.TargetService
	ops := req.Operations

	analysis := analyze.Analyze(svc, ops)
	result := &Result{Analysis: analysis}

	if problems := (safety.Validator{ProjectRoot: a.ProjectRoot}).ValidateAll(ops, svc); len(problems) > 0 {
		return result, &safety.Violation{Problems: problems}
	}

	if req.Options.DryRun {
		result.DryRun = true
		return result, nil
	}

	if !req.Options.AutoConfirm {
		ok, err := a.Confirm(*analysis, fieldops.HasRemove(ops))
		if err != nil {
			return result, fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			return result, ErrCancelled
		}
	}

	backupID, err := a.Snapshots.Create(svc, a.ProjectRoot)
	if err != nil {
		return result, fmt.Errorf("failed to create snapshot, nothing modified: %w", err)
	}
	result.BackupID = backupID
	log.Printf("created backup %s", backupID)

	if stage, err := a.apply(svc, ops, result); err != nil {
		return result, a.failAndRestore(backupID, stage, err)
	}
	return result, nil
}

// step pairs a pipeline stage name with its mutation.
type step struct {
	name string
	run  func() error
}

// apply performs the mutations in dependency order: the migration first so a
// failed render leaves the sources untouched, then the Java layers. Returns
// the failing stage name alongside the error.
func (a *Applier) apply(svc project.Service, ops []fieldops.Operation, result *Result) (string, error) {
	generator := migrate.NewGenerator(a.ProjectRoot, a.TemplatesDir)
	updater := rewrite.NewUpdater(a.ProjectRoot)

	steps := []step{
		{"migration generation", func() error {
			path, err := generator.Generate(svc, ops)
			result.MigrationFile = path
			return err
		}},
		{"entity update", func() error { return updater.UpdateModel(svc, ops) }},
		{"DTO update", func() error { return updater.UpdateDTOs(svc, ops) }},
		{"service update", func() error { return updater.UpdateService(svc, ops) }},
		{"repository update", func() error { return updater.UpdateRepository(svc, ops) }},
		{"frontend notes", func() error {
			path, err := updater.WriteFrontendNotes(svc, ops)
			result.FrontendNotes = path
			return err
		}},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return s.name, err
		}
	}

	if result.MigrationFile != "" {
		result.LintIssues = sqlcheck.LintFile(result.MigrationFile)
		for _, issue := range result.LintIssues {
			log.Printf("migration lint: %s: %s", issue.Severity, issue.Message)
		}
	}

	// Controllers delegate to the service layer and rarely need changes for
	// field operations.
	log.Printf("controller %s left unchanged; review manually if endpoints expose the new fields", svc.ControllerPath())

	result.TestSuggestions = updater.ReviewTests(svc, ops)
	return "", nil
}

func (a *Applier) failAndRestore(backupID, stage string, cause error) error {
	log.Printf("apply failed during %s, restoring from %s: %v", stage, backupID, cause)
	if !a.Snapshots.Restore(backupID) {
		return &RestoreFailure{BackupID: backupID, Err: cause}
	}
	return &ApplyFailure{Step: stage, BackupID: backupID, Restored: true, Err: cause}
}

// MigrationDir is the project's migration directory, for callers that lint or
// verify after a run.
func (a *Applier) MigrationDir() string {
	return filepath.Join(a.ProjectRoot, project.MigrationDir)
}
