// Package shadow verifies generated migrations by executing them against a
// scratch database. The target project tree is never touched; only the
// configured shadow database URL is.
package shadow

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var migrationPattern = regexp.MustCompile(`^V(\d+)__.*\.sql$`)

// DetectDriver maps a connection string to a driver type: postgres, libsql,
// or sqlite. Anything that is not an URL is treated as a SQLite file path.
func DetectDriver(connStr string) string {
	lower := strings.ToLower(connStr)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(lower, "libsql://"):
		return "libsql"
	default:
		return "sqlite"
	}
}

// dsn strips URL prefixes the SQLite driver does not understand.
func dsn(connStr string) string {
	if strings.HasPrefix(strings.ToLower(connStr), "sqlite://") {
		return connStr[len("sqlite://"):]
	}
	return connStr
}

// FileResult is the outcome of applying one migration file.
type FileResult struct {
	File    string
	Version int
	Err     error
}

// Verifier applies a migration directory to a shadow database.
type Verifier struct {
	DatabaseURL string

	// open is swappable for tests.
	open func(driverName, dataSourceName string) (*sql.DB, error)
}

// NewVerifier returns a Verifier for the given shadow database URL.
func NewVerifier(databaseURL string) *Verifier {
	return &Verifier{DatabaseURL: databaseURL, open: sql.Open}
}

// Verify executes every V<n>__*.sql file under migrationDir in version order
// against the shadow database, stopping at the first failure since later
// migrations depend on earlier ones. Returns the per-file results.
func (v *Verifier) Verify(ctx context.Context, migrationDir string) ([]FileResult, error) {
	files, err := listMigrations(migrationDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no versioned migrations found in %s", migrationDir)
	}

	driverType := DetectDriver(v.DatabaseURL)
	db, err := v.open(driverType, dsn(v.DatabaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to open shadow database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping shadow database: %w", err)
	}

	var results []FileResult
	for _, file := range files {
		content, err := os.ReadFile(filepath.Join(migrationDir, file.name))
		if err != nil {
			results = append(results, FileResult{File: file.name, Version: file.version, Err: err})
			return results, nil
		}

		_, execErr := db.ExecContext(ctx, string(content))
		results = append(results, FileResult{File: file.name, Version: file.version, Err: execErr})
		if execErr != nil {
			return results, nil
		}
	}
	return results, nil
}

// Failed returns the first failing result, if any.
func Failed(results []FileResult) (FileResult, bool) {
	for _, r := range results {
		if r.Err != nil {
			return r, true
		}
	}
	return FileResult{}, false
}

type migrationFile struct {
	name    string
	version int
}

func listMigrations(dir string) ([]migrationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var files []migrationFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := migrationPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		version, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		files = append(files, migrationFile{name: entry.Name(), version: version})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}
