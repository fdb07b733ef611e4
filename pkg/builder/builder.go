// Package builder drives the NuttX make system: configuration through
// tools/configure.sh, builds, cleans and arbitrary make targets.
package builder

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/fdcavalcanti/ntxbuild/pkg/runner"
)

// ConfigureScript is run from the OS directory by Setup.
const ConfigureScript = "./tools/configure.sh"

// Builder runs build actions for one workspace.
type Builder struct {
	osPath   string
	appsPath string
	tool     string
	exec     runner.Executor
	log      zerolog.Logger
	stdout   io.Writer
	stderr   io.Writer
}

// Option configures a Builder.
type Option func(*Builder)

// WithExecutor replaces the process executor.
func WithExecutor(e runner.Executor) Option {
	return func(b *Builder) { b.exec = e }
}

// WithBuildTool overrides the make executable.
func WithBuildTool(tool string) Option {
	return func(b *Builder) { b.tool = tool }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// WithOutput sets where tool output is streamed.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(b *Builder) { b.stdout, b.stderr = stdout, stderr }
}

// New returns a Builder for the given OS and apps trees.
func New(osPath, appsPath string, opts ...Option) *Builder {
	b := &Builder{
		osPath:   osPath,
		appsPath: appsPath,
		tool:     "make",
		exec:     &runner.RealExecutor{},
		log:      zerolog.Nop(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OSPath returns the OS tree the builder works in.
func (b *Builder) OSPath() string { return b.osPath }

// AppsArg is the apps path handed to configure.sh: relative when both
// trees share a parent, absolute otherwise.
func (b *Builder) AppsArg() string {
	if filepath.Dir(filepath.Clean(b.osPath)) == filepath.Dir(filepath.Clean(b.appsPath)) {
		return "../" + filepath.Base(b.appsPath)
	}
	return b.appsPath
}

// Validate checks that both trees look like NuttX checkouts and returns
// the first problem found.
func (b *Builder) Validate() (bool, string) {
	b.log.Info().Msgf("Validating NuttX environment: nuttx_dir=%s, apps_dir=%s", b.osPath, b.appsPath)

	for _, marker := range []string{"Makefile", "INVIOLABLES.md"} {
		if _, err := os.Stat(filepath.Join(b.osPath, marker)); err != nil {
			b.log.Error().Msgf("%s not found at: %s", marker, filepath.Join(b.osPath, marker))
			return false, "Invalid NuttX directory: " + b.osPath
		}
	}

	fi, err := os.Stat(b.appsPath)
	if err != nil {
		b.log.Error().Msgf("Apps directory not found: %s", b.appsPath)
		return false, "Apps directory not found: " + b.appsPath
	}
	if !fi.IsDir() {
		b.log.Error().Msgf("Apps path is not a directory: %s", b.appsPath)
		return false, "Apps path is not a directory: " + b.appsPath
	}
	if _, err := os.Stat(filepath.Join(b.appsPath, "Make.defs")); err != nil {
		b.log.Error().Msgf("Make.defs not found in apps directory: %s", b.appsPath)
		return false, "Apps directory may not be properly configured (Make.defs missing): " + b.appsPath
	}

	b.log.Info().Msg("NuttX environment validation successful")
	return true, ""
}

// Setup validates the workspace and runs configure.sh for board:defconfig.
// It returns the script's exit code, or 1 when validation or launching
// the script fails.
func (b *Builder) Setup(ctx context.Context, board, defconfig string, extra []string) int {
	b.log.Info().Msgf("Setting up NuttX: board=%s, defconfig=%s", board, defconfig)
	if ok, msg := b.Validate(); !ok {
		b.log.Error().Msgf("Validation failed: %s", msg)
		return 1
	}

	args := append([]string{"-a", b.AppsArg(), board + ":" + defconfig}, extra...)
	cmd := runner.Command{Name: ConfigureScript, Args: args, Dir: b.osPath}
	b.log.Info().Msgf("Running configure.sh with args: %v", args)

	res, err := b.exec.Stream(ctx, cmd, b.stdout, b.stderr)
	if err != nil {
		b.log.Error().Err(err).Msg("Setup failed")
		return 1
	}
	if res.ExitCode != 0 {
		b.log.Error().Msgf("Configure script failed with exit code: %d", res.ExitCode)
		return res.ExitCode
	}
	b.log.Info().Msg("NuttX setup completed successfully")
	return 0
}

// Build runs make, passing -jN when jobs is positive.
func (b *Builder) Build(ctx context.Context, jobs int) (int, error) {
	b.log.Info().Msgf("Starting build with parallel=%d", jobs)
	var args []string
	if jobs > 0 {
		args = append(args, "-j"+strconv.Itoa(jobs))
	}
	return b.make(ctx, args...)
}

// Clean removes build outputs.
func (b *Builder) Clean(ctx context.Context) (int, error) {
	b.log.Info().Msg("Running clean")
	return b.make(ctx, TargetClean.String())
}

// Distclean removes build outputs and the configuration.
func (b *Builder) Distclean(ctx context.Context) (int, error) {
	b.log.Info().Msg("Running distclean")
	return b.make(ctx, TargetDistclean.String())
}

// Make runs a single make target.
func (b *Builder) Make(ctx context.Context, target MakeTarget) (int, error) {
	b.log.Info().Msgf("Running make %s", target)
	return b.make(ctx, target.String())
}

// Menuconfig opens the interactive configuration menu.
func (b *Builder) Menuconfig(ctx context.Context) (int, error) {
	return b.exec.Interactive(ctx, runner.Command{Name: b.tool, Args: []string{TargetMenuconfig.String()}, Dir: b.osPath})
}

func (b *Builder) make(ctx context.Context, args ...string) (int, error) {
	cmd := runner.Command{Name: b.tool, Args: args, Dir: b.osPath}
	b.log.Debug().Str("cmd", cmd.String()).Str("dir", b.osPath).Msg("Running")
	res, err := b.exec.Stream(ctx, cmd, b.stdout, b.stderr)
	if err != nil {
		return 1, err
	}
	b.log.Debug().Int("code", res.ExitCode).Dur("took", res.Duration).Msg("Finished")
	return res.ExitCode, nil
}
