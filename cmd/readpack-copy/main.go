// Command readpack-copy copies a readpack container, merging the per-batch
// pore-type dictionaries and re-encoding signals.
//
//	readpack-copy <input> <output> [--VBZ | --uncompressed]
//	readpack-copy inspect <file> [--json]
//	readpack-copy version
//
// Settings come from READPACK_* environment variables and the file named by
// READPACK_CONFIG; see internal/config.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/readpack"
	"github.com/arloliu/readpack/internal/config"
	"github.com/arloliu/readpack/internal/logger"
	"github.com/arloliu/readpack/internal/metrics"
)

var version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(isSubcommandCall(args))
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	_ = logger.Sync()

	if err == nil {
		return 0
	}

	fmt.Fprintln(stderr, err)

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	return exitFailure
}

// newRootCmd builds the copy command. Subcommands are attached only when
// withSubcommands is set, so positional arguments are never matched against
// subcommand names otherwise.
func newRootCmd(withSubcommands bool) *cobra.Command {
	root := &cobra.Command{
		Use:   "readpack-copy <input> <output> [--VBZ | --uncompressed]",
		Short: "Copy a readpack container",
		Long: `Copy every read and run info of a readpack container into a new file.

Pore-type dictionaries of all source batches are merged into one destination
dictionary. Signals are written VBZ compressed unless --uncompressed is given.
An existing output file is replaced.

An input named "inspect" or "version" is copied when an output path follows
it; "./version" works as well.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && (args[0] == "-h" || args[0] == "--help") {
				return cmd.Help()
			}

			return runCopy(cmd, args)
		},
	}

	if withSubcommands {
		root.AddCommand(newInspectCmd(), newVersionCmd())
	}

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "readpack-copy v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// setup loads the configuration and installs the global logger.
func setup(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	err = logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Encoding:    cfg.Log.Encoding,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger.Get(), nil
}

func runCopy(cmd *cobra.Command, args []string) error {
	a, err := parseCopyArgs(args)
	if err != nil {
		return err
	}
	if len(a.ignored) > 0 {
		cmd.PrintErrln("Ignoring extra arguments (only first 3 considered)")
	}

	cfg, log, err := setup("")
	if err != nil {
		return err
	}

	in, err := filepath.Abs(a.input)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	out, err := filepath.Abs(a.output)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	var m *metrics.CopyMetrics
	if cfg.Metrics.Textfile != "" {
		m = metrics.New()
	}

	_, copyErr := readpack.CopyFile(in, out, readpack.CopyConfig{
		SignalCompression: a.signal,
		RowCompression:    cfg.RowCompression(),
		Creator:           cfg.Copy.Creator,
		ErrorPolicy:       cfg.ErrorPolicy(),
		Logger:            log,
		Metrics:           m,
	})

	if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		log.Warn("failed to write metrics", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
	}

	return copyErr
}
