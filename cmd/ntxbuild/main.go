package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fdcavalcanti/ntxbuild/pkg/builder"
	"github.com/fdcavalcanti/ntxbuild/pkg/config"
	"github.com/fdcavalcanti/ntxbuild/pkg/logging"
	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
	"github.com/fdcavalcanti/ntxbuild/pkg/runner"
	"github.com/fdcavalcanti/ntxbuild/pkg/settings"
	"github.com/fdcavalcanti/ntxbuild/pkg/workspace"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

var (
	cfg     *settings.Settings
	verbose bool
	noColor bool
	logger  zerolog.Logger

	// executor runs every external tool the commands delegate to.
	executor runner.Executor = &runner.RealExecutor{}
)

func main() {
	_ = godotenv.Load() // a missing .env is fine
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		var ext *ntxerr.ExternalError
		if !errors.As(err, &ext) || verbose {
			logger.Error().Err(err).Msg("ntxbuild failed")
		}
	}
	os.Exit(ntxerr.ExitCode(err))
}

var rootCmd = &cobra.Command{
	Use:           "ntxbuild",
	Short:         "NuttX build system assistant",
	Long:          "ntxbuild locates a NuttX workspace, drives its make system and edits Kconfig options.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = settings.Load()
		if err != nil {
			return err
		}
		level := cfg.LogLevel()
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = logging.New(os.Stderr, level, noColor || cfg.Log.NoColor)
		cmd.SetContext(logging.WithLogger(cmd.Context(), &logger))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ntxbuild %s (build: %s)\n", version, commit)
	},
}

func init() {
	logger = logging.New(os.Stderr, zerolog.InfoLevel, false)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured log output")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(distcleanCmd)
	rootCmd.AddCommand(makeCmd)
	rootCmd.AddCommand(menuconfigCmd)
	rootCmd.AddCommand(kconfigCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(boardsCmd)
	rootCmd.AddCommand(defconfigsCmd)
	rootCmd.AddCommand(artifactsCmd)
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}

// currentRecord loads the environment record of the workspace around the
// working directory.
func currentRecord() (*workspace.Record, error) {
	return workspace.FindRecord(".")
}

func newBuilder(ctx context.Context, rec *workspace.Record) *builder.Builder {
	return builder.New(rec.OSPath(), rec.AppsPath(),
		builder.WithBuildTool(rec.BuildTool),
		builder.WithExecutor(executor),
		builder.WithLogger(logging.Component(ctx, "builder")),
	)
}

func newManager(ctx context.Context, rec *workspace.Record) *config.Manager {
	return config.New(rec.OSPath(), rec.AppsPath(),
		config.WithBuildTool(rec.BuildTool),
		config.WithExecutor(executor),
		config.WithLogger(logging.Component(ctx, "config")),
	)
}
