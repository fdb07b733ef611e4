package config

import (
	"os"
	"path/filepath"
	"sync"
)

// Variables the NuttX Kconfig tree reads while being parsed.
const (
	EnvBinDir      = "BINDIR"
	EnvAppsBinDir  = "APPSBINDIR"
	EnvAppsDir     = "APPSDIR"
	EnvExternalDir = "EXTERNALDIR"
)

var envMu sync.Mutex

// envOverlay sets the Kconfig variables for the duration of one call and
// puts the previous values back afterwards.
type envOverlay struct {
	prev map[string]*string
}

func kconfigEnv(osPath, appsPath string) map[string]string {
	external := filepath.Join(osPath, "external")
	if _, err := os.Stat(external); err != nil {
		external = filepath.Join(osPath, "dummy")
	}
	return map[string]string{
		EnvBinDir:      osPath,
		EnvAppsBinDir:  appsPath,
		EnvAppsDir:     appsPath,
		EnvExternalDir: external,
	}
}

// applyEnv takes the overlay lock and exports vars. The returned overlay
// must be restored exactly once.
func applyEnv(vars map[string]string) *envOverlay {
	envMu.Lock()
	o := &envOverlay{prev: make(map[string]*string, len(vars))}
	for k, v := range vars {
		if old, ok := os.LookupEnv(k); ok {
			o.prev[k] = &old
		} else {
			o.prev[k] = nil
		}
		os.Setenv(k, v)
	}
	return o
}

func (o *envOverlay) restore() {
	defer envMu.Unlock()
	for k, v := range o.prev {
		if v == nil {
			os.Unsetenv(k)
		} else {
			os.Setenv(k, *v)
		}
	}
}

// withEnv runs fn with vars exported, restoring them even if fn panics.
func withEnv(vars map[string]string, fn func() error) error {
	o := applyEnv(vars)
	defer o.restore()
	return fn()
}
