package application

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const (
	AppName        = "fleetroster"
	ConfigFileName = "config.yaml"

	// EnvConfig overrides the config file location.
	EnvConfig = "FLEETROSTER_CONFIG"
)

var (
	dirOnce sync.Once
	dir     string
	dirErr  error
)

// GetApplicationDirectory returns the directory holding the config file
// and the default database. It is resolved once per process: the user
// config dir on Unix, the local app data dir on Windows.
func GetApplicationDirectory() (string, error) {
	dirOnce.Do(func() {
		dir, dirErr = resolveDirectory(runtime.GOOS)
	})

	return dir, dirErr
}

func resolveDirectory(goos string) (string, error) {
	base := os.UserConfigDir
	if goos == "windows" {
		base = os.UserCacheDir
	}

	root, err := base()
	if err != nil {
		return "", fmt.Errorf("locate %s directory: %w", AppName, err)
	}

	return filepath.Join(root, AppName), nil
}

// ConfigPath returns the config file location: $FLEETROSTER_CONFIG when set,
// otherwise config.yaml in the application directory.
func ConfigPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}

	dir, err := GetApplicationDirectory()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, ConfigFileName), nil
}

// DataPath returns name joined to the application directory.
func DataPath(name string) (string, error) {
	dir, err := GetApplicationDirectory()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, name), nil
}
