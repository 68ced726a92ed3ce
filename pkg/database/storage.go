// pkg/database/storage.go
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"merchantops/models"
	"merchantops/pkg/logger"
)

const backupTimestampFormat = "20060102_150405"

type Config struct {
	DataDir    string
	ReportsDir string
}

// DefaultConfig returns a storage configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		DataDir:    "data",
		ReportsDir: "reports",
	}
}

// Storage is the flat-file backing store. Each logical collection lives
// in a single JSON file under the data directory and is read and written
// wholesale; report artifacts go to the reports directory.
type Storage struct {
	config Config
	logger *logger.Logger
}

// Open prepares the data and reports directories and returns a storage
// handle. It fails when either directory cannot be created or written.
func Open(config Config, log *logger.Logger) (*Storage, error) {
	log.Info("Opening flat-file storage",
		"data_dir", config.DataDir,
		"reports_dir", config.ReportsDir)

	if config.DataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}
	if config.ReportsDir == "" {
		return nil, fmt.Errorf("reports directory cannot be empty")
	}

	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		log.Error("Failed to create data directory", "path", config.DataDir, "error", err)
		return nil, models.NewIOError("mkdir", config.DataDir, err)
	}
	if err := os.MkdirAll(config.ReportsDir, 0o755); err != nil {
		log.Error("Failed to create reports directory", "path", config.ReportsDir, "error", err)
		return nil, models.NewIOError("mkdir", config.ReportsDir, err)
	}

	return &Storage{
		config: config,
		logger: log.WithComponent("storage"),
	}, nil
}

// CollectionPath returns the file backing the named collection.
func (s *Storage) CollectionPath(name string) string {
	return filepath.Join(s.config.DataDir, name+".json")
}

// ReportsDir returns the directory report artifacts are written to.
func (s *Storage) ReportsDir() string {
	return s.config.ReportsDir
}

// ReadCollection returns the raw contents of a collection file. A missing
// file yields nil with no error; callers start from an empty collection.
func (s *Storage) ReadCollection(name string) ([]byte, error) {
	path := s.CollectionPath(name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("Collection file does not exist yet", "collection", name)
			return nil, nil
		}
		s.logger.Error("Failed to read collection file", "collection", name, "error", err)
		return nil, models.NewIOError("read", path, err)
	}

	return data, nil
}

// WriteCollection persists a collection file atomically: the data is
// written to a temp file which then replaces the original.
func (s *Storage) WriteCollection(name string, data []byte) error {
	path := s.CollectionPath(name)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return models.NewIOError("mkdir", filepath.Dir(path), err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		s.logger.Error("Failed to write temporary collection file", "collection", name, "error", err)
		return models.NewIOError("write", tempFile, err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		s.logger.Error("Failed to replace collection file", "collection", name, "error", err)
		return models.NewIOError("rename", path, err)
	}

	return nil
}

// BackupCollection copies the current collection file aside with a
// timestamp suffix. Used before discarding contents that failed to parse.
func (s *Storage) BackupCollection(name string) (string, error) {
	path := s.CollectionPath(name)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", models.NewIOError("read", path, err)
	}

	backupPath := path + ".backup." + time.Now().Format(backupTimestampFormat)
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", models.NewIOError("write", backupPath, err)
	}

	s.logger.Info("Backed up collection file", "collection", name, "backup", backupPath)
	return backupPath, nil
}
