// Package settings loads the user-level ntxbuild settings.
package settings

import (
	"os"
	"path/filepath"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Settings describes all tool options.
type Settings struct {
	Log struct {
		Level   string `default:"info" toml:"level" env:"LEVEL" usage:"Log level (debug, info, warn, error)"`
		NoColor bool   `default:"false" toml:"no_color" env:"NO_COLOR" usage:"Disable coloured log output"`
	} `toml:"log" env:"LOG"`
	Workspace struct {
		OSDir   string `default:"nuttx" toml:"os_dir" env:"OS_DIR" usage:"Name of the NuttX OS directory"`
		AppsDir string `default:"nuttx-apps" toml:"apps_dir" env:"APPS_DIR" usage:"Name of the NuttX apps directory"`
	} `toml:"workspace" env:"WORKSPACE"`
	Build struct {
		Tool string `default:"make" toml:"tool" env:"TOOL" usage:"Build tool executable"`
		Jobs int    `default:"0" toml:"jobs" env:"JOBS" usage:"Default parallel jobs for build (0 lets make decide)"`
	} `toml:"build" env:"BUILD"`
	Install struct {
		OSURL   string `default:"https://github.com/apache/nuttx.git" toml:"os_url" env:"OS_URL" usage:"Repository cloned into the OS directory"`
		AppsURL string `default:"https://github.com/apache/nuttx-apps.git" toml:"apps_url" env:"APPS_URL" usage:"Repository cloned into the apps directory"`
	} `toml:"install" env:"INSTALL"`
	Copy struct {
		TargetDir string `toml:"target_dir" env:"TARGET_DIR" usage:"Directory receiving workspace copies (defaults to the system temp dir)"`
	} `toml:"copy" env:"COPY"`
}

var logLevels = map[string]zerolog.Level{
	"trace":   zerolog.TraceLevel,
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

var buildTools = map[string]bool{
	"make":  true,
	"gmake": true,
}

// Files lists the candidate settings files. The first one present is used.
func Files() []string {
	files := []string{"ntxbuild.toml"}
	if dir, err := os.UserConfigDir(); err == nil {
		files = append(files, filepath.Join(dir, "ntxbuild", "config.toml"))
	}
	return files
}

// Loader initializes an empty Settings object and returns a loader for it.
func Loader(files ...string) (*Settings, *aconfig.Loader) {
	cfg := Settings{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix:  "NTXBUILD",
		SkipFlags:  true,
		Files:      files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// Load reads defaults, the settings files and NTXBUILD_* variables, then validates.
func Load() (*Settings, error) {
	cfg, loader := Loader(Files()...)
	if err := loader.Load(); err != nil {
		return nil, eris.Wrap(err, "load settings")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifies that all fields have valid values.
func (cfg *Settings) Validate() error {
	if _, ok := logLevels[cfg.Log.Level]; !ok {
		return eris.Errorf("invalid value for log.level: %s", cfg.Log.Level)
	}
	if !buildTools[cfg.Build.Tool] {
		return eris.Errorf("invalid value for build.tool: %s (must be make or gmake)", cfg.Build.Tool)
	}
	if cfg.Build.Jobs < 0 {
		return eris.Errorf("invalid value for build.jobs: %d", cfg.Build.Jobs)
	}
	if cfg.Workspace.OSDir == "" || cfg.Workspace.AppsDir == "" {
		return eris.New("workspace directory names must not be empty")
	}
	if cfg.Workspace.OSDir == cfg.Workspace.AppsDir {
		return eris.Errorf("workspace.osdir and workspace.appsdir are both %q", cfg.Workspace.OSDir)
	}
	return nil
}

// LogLevel converts Log.Level to a zerolog.Level.
func (cfg *Settings) LogLevel() zerolog.Level {
	return logLevels[cfg.Log.Level]
}
