package appdir

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.literasi.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".literasi")
}

// ConfigPath returns the daemon config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// DataDir returns the default data directory for the daemon.
func DataDir() string {
	return filepath.Join(BaseDir(), "data")
}

// DBPath returns the SQLite database path under dataDir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "literasi.db")
}

// StatePath returns the daemon-local key-value state file under dataDir.
func StatePath(dataDir string) string {
	return filepath.Join(dataDir, "state.json")
}

// LogDir returns the log directory under dataDir.
func LogDir(dataDir string) string {
	return filepath.Join(dataDir, "logs")
}

// LogPath returns the daemon log file path under dataDir.
func LogPath(dataDir string) string {
	return filepath.Join(LogDir(dataDir), "literasid.log")
}

// ClientStatePath returns the key-value state file used by literasictl.
func ClientStatePath() string {
	return filepath.Join(BaseDir(), "ctl_state.json")
}

// EnsureDataDir creates the data directory tree with proper permissions.
func EnsureDataDir(dataDir string) error {
	dirs := []string{
		dataDir,
		LogDir(dataDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
