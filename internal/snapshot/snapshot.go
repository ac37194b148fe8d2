package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/viraforge/viraforge/internal/project"
)

// ManifestFile is the filename written into every snapshot directory.
const ManifestFile = "manifest.json"

// Manifest records what a snapshot holds and where it came from.
type Manifest struct {
	BackupID      string   `json:"backup_id"`
	ServiceName   string   `json:"service_name"`
	Timestamp     string   `json:"timestamp"`
	FilesBackedUp []string `json:"files_backed_up"`
	ProjectRoot   string   `json:"project_root"`
}

// Manager creates, lists, and restores snapshots under a base directory.
// Snapshot directories persist on disk as the durable record and are never
// auto-deleted.
type Manager struct {
	BaseDir string

	// now is swappable for tests.
	now func() time.Time
}

// NewManager returns a Manager rooted at baseDir.
func NewManager(baseDir string) *Manager {
	return &Manager{BaseDir: baseDir, now: time.Now}
}

// Create copies every convention-derived path of the service that exists into
// a new timestamped snapshot directory and writes the manifest. Returns the
// backup id. A partial failure removes the half-made snapshot and propagates
// the error.
func (m *Manager) Create(svc project.Service, projectRoot string) (string, error) {
	timestamp := m.now().Format("20060102_150405")
	backupID := fmt.Sprintf("field_modification_%s_%s", svc.Name, timestamp)
	backupDir := filepath.Join(m.BaseDir, backupID)

	if _, err := os.Stat(backupDir); err == nil {
		return "", fmt.Errorf("snapshot %s already exists", backupID)
	}
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	paths := svc.SnapshotPaths()
	if err := m.copyAll(projectRoot, backupDir, paths); err != nil {
		if rmErr := os.RemoveAll(backupDir); rmErr != nil {
			log.Printf("warning: failed to clean up partial snapshot %s: %v", backupID, rmErr)
		}
		return "", fmt.Errorf("failed to create snapshot: %w", err)
	}

	manifest := Manifest{
		BackupID:      backupID,
		ServiceName:   svc.Name,
		Timestamp:     timestamp,
		FilesBackedUp: paths,
		ProjectRoot:   projectRoot,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		_ = os.RemoveAll(backupDir)
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(backupDir, ManifestFile), data, 0644); err != nil {
		_ = os.RemoveAll(backupDir)
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	return backupID, nil
}

func (m *Manager) copyAll(projectRoot, backupDir string, paths []string) error {
	for _, rel := range paths {
		source := filepath.Join(projectRoot, rel)
		info, err := os.Stat(source)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return err
		}

		dest := filepath.Join(backupDir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		if info.IsDir() {
			if err := copyTree(source, dest); err != nil {
				return err
			}
		} else {
			if err := copyFile(source, dest); err != nil {
				return err
			}
		}
	}
	return nil
}

// Restore replaces live content with the snapshot's. Directory restore is
// destructive: the live directory is removed, then the snapshot copy moves in.
// Returns false on an unknown id or any restore failure; the cause is logged,
// never raised.
func (m *Manager) Restore(backupID string) bool {
	backupDir := filepath.Join(m.BaseDir, backupID)
	manifest, err := readManifest(backupDir)
	if err != nil {
		log.Printf("backup not found or unreadable: %s: %v", backupID, err)
		return false
	}

	for _, rel := range manifest.FilesBackedUp {
		backupPath := filepath.Join(backupDir, rel)
		livePath := filepath.Join(manifest.ProjectRoot, rel)

		info, err := os.Stat(backupPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			log.Printf("failed to restore backup %s: %v", backupID, err)
			return false
		}

		if info.IsDir() {
			if err := os.RemoveAll(livePath); err != nil {
				log.Printf("failed to restore backup %s: %v", backupID, err)
				return false
			}
			if err := copyTree(backupPath, livePath); err != nil {
				log.Printf("failed to restore backup %s: %v", backupID, err)
				return false
			}
		} else {
			if err := os.MkdirAll(filepath.Dir(livePath), 0755); err != nil {
				log.Printf("failed to restore backup %s: %v", backupID, err)
				return false
			}
			if err := copyFile(backupPath, livePath); err != nil {
				log.Printf("failed to restore backup %s: %v", backupID, err)
				return false
			}
		}
	}

	return true
}

// List returns every readable manifest, newest first. Snapshot directories
// with a missing or unreadable manifest are skipped.
func (m *Manager) List() ([]Manifest, error) {
	entries, err := os.ReadDir(m.BaseDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var manifests []Manifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := readManifest(filepath.Join(m.BaseDir, entry.Name()))
		if err != nil {
			continue
		}
		manifests = append(manifests, *manifest)
	}

	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].Timestamp > manifests[j].Timestamp
	})
	return manifests, nil
}

func readManifest(backupDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(backupDir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &manifest, nil
}

func copyTree(source, dest string) error {
	return filepath.WalkDir(source, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(path, target)
	})
}

func copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
