// Package demo is a small menu, level and pause session that exercises every
// transition kind of the state machine engine, scripted or interactive.
package demo

import (
	"context"
	"embed"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/amp-labs/pushdown/statemachine"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

//go:embed configs/*.yaml
var configFS embed.FS

// embeddedConfigs resolves --config names against the configs shipped in the binary.
type embeddedConfigs struct {
	fs embed.FS
}

func (e embeddedConfigs) LoadByName(name string) ([]byte, error) {
	return e.fs.ReadFile(path.Join("configs", name+".yaml"))
}

func (e embeddedConfigs) ListAvailable() []string {
	entries, err := e.fs.ReadDir("configs")
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}

	return names
}

// App represents the CLI application.
type App struct {
	root       *cobra.Command
	stdout     io.Writer
	stderr     io.Writer
	configName string
}

// New creates a new CLI application.
func New() *App {
	statemachine.SetConfigLoader(embeddedConfigs{fs: configFS})

	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "pushdown-demo",
		Short: "Drive a pushdown state machine from a script or the keyboard",
		Long: `pushdown-demo runs a tiny game session on the pushdown state machine engine.

The session starts at the main menu. Playing pushes a level on top of the
menu, pausing pushes a pause menu on top of the level, and a level that runs
out of ticks is switched for a game over screen.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.root.PersistentFlags().StringVarP(&app.configName, "config", "c", "demo",
		"Machine config: a YAML file path or the name of a built-in config (demo, quiet)")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newRunCmd(),
		app.newPlayCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)

	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)

	return a.Execute(ctx)
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(a.stdout, "pushdown-demo version %s\n", Version)
			_, _ = fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
		},
	}
}

// machineOptions loads the machine config selected with --config.
func (a *App) machineOptions() ([]statemachine.Option, error) {
	config, err := statemachine.LoadConfig(a.configName)
	if err != nil {
		return nil, fmt.Errorf("failed to load machine config: %w", err)
	}

	return config.Options(), nil
}
