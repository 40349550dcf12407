package constants

import (
	"os"
	"path/filepath"
)

const DefaultHomeEnv string = "ICETEST_HOME"
const ConfigEnv string = "ICETEST_CONFIG"

// Section of config.yaml read by the harness.
const ConfigSection = "icetest"

var DefaultHome string

func init() {
	if home := os.Getenv(DefaultHomeEnv); home != "" {
		DefaultHome = home
		return
	}
	// ~/.icetest default
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		DefaultHome = "/data"
	} else {
		DefaultHome = filepath.Join(userHomeDir, ".icetest")
	}
}
