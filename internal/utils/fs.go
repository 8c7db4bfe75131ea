package utils

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// DirCheckResult reports whether a directory exists (or could be
// created) and whether it accepts writes.
type DirCheckResult struct {
	Exists   bool
	Writable bool
	Error    error
}

// FileExists reports whether path names an existing file.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates the directory and any missing parents.
func EnsureDir(dirPath string) error {
	return os.MkdirAll(dirPath, 0755)
}

// SaveTOMLFile writes data out as TOML, replacing the file if present.
func SaveTOMLFile(data interface{}, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		log.Errorf("Cannot create %s: %v", filePath, err)
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(data)
}

// GetAbsolutePath resolves a possibly relative path for display. An
// empty path comes back as "unknown" so log lines stay readable.
func GetAbsolutePath(configPath string) string {
	if configPath == "" {
		return "unknown"
	}
	if filepath.IsAbs(configPath) {
		return configPath
	}
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return configPath
	}
	return abs
}

// testWriteAccess probes a directory with a throwaway temp file.
func testWriteAccess(dirPath string) bool {
	probe, err := os.CreateTemp(dirPath, ".wordtag-*")
	if err != nil {
		log.Warnf("Directory %s is not writable: %v", dirPath, err)
		return false
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return true
}

// GetExecutableDir returns the directory holding the running binary.
// Used when no config dir can be derived from the environment; callers
// fall back to built-in defaults when this fails too.
func GetExecutableDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(execPath), nil
}

// CheckDirStatus stats a directory, creating it when absent, and
// probes write access on whatever ends up existing.
func CheckDirStatus(dirPath string) DirCheckResult {
	if _, err := os.Stat(dirPath); err != nil {
		if mkErr := os.MkdirAll(dirPath, 0755); mkErr != nil {
			log.Warnf("Cannot create directory %s: %v", dirPath, mkErr)
			return DirCheckResult{Error: mkErr}
		}
	}
	return DirCheckResult{Exists: true, Writable: testWriteAccess(dirPath)}
}
