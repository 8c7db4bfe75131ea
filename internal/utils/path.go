package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// PathResolver locates the lexicon data directory relative to the
// installed binary, the working directory and the per-user config dir.
type PathResolver struct {
	execDir   string
	homeDir   string
	configDir string
}

// NewPathResolver captures the running binary's real location. Symlinked
// installs resolve to the target so tables shipped next to the binary
// are still found.
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("No home directory: %v", err)
		homeDir = "/tmp"
	}

	pr := &PathResolver{
		execDir:   filepath.Dir(execPath),
		homeDir:   homeDir,
		configDir: getConfigDir(homeDir),
	}
	log.Debugf("Paths: exec=%s config=%s", pr.execDir, pr.configDir)
	return pr, nil
}

// getConfigDir picks the per-user config directory for the platform.
func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, ".config", "wordtag")
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "wordtag")
		}
		return filepath.Join(homeDir, ".config", "wordtag")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "wordtag")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "wordtag")
	default:
		return filepath.Join(homeDir, ".wordtag")
	}
}

// GetLexiconDir finds a directory holding .lex tables, trying the
// user-supplied path absolute first, then anchored at the executable,
// then at the working directory, then the stock data locations. When
// no candidate holds tables, the executable-anchored path comes back
// anyway so the caller's error names the place tables belong.
func (pr *PathResolver) GetLexiconDir(userPath string) (string, error) {
	var candidates []string
	if filepath.IsAbs(userPath) {
		candidates = append(candidates, userPath)
	}

	execRelative := filepath.Join(pr.execDir, userPath)
	candidates = append(candidates, execRelative)

	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, userPath))
	}

	candidates = append(candidates,
		filepath.Join(pr.execDir, "data"),
		filepath.Join(filepath.Dir(pr.execDir), "data"),
		filepath.Join(pr.configDir, "data"),
	)

	for _, dir := range candidates {
		if hasLexTables(dir) {
			log.Debugf("Lexicon directory: %s", dir)
			return dir, nil
		}
		log.Debugf("No tables under %s", dir)
	}
	return execRelative, nil
}

// hasLexTables reports whether dir exists and holds at least one .lex
// table.
func hasLexTables(dir string) bool {
	stat, err := os.Stat(dir)
	if err != nil || !stat.IsDir() {
		return false
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.lex"))
	return err == nil && len(matches) > 0
}
