package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"

	"github.com/Qthai16/ringqueue/cmd/qtest/console"
	"github.com/Qthai16/ringqueue/cmd/qtest/fuzz"
	"github.com/Qthai16/ringqueue/config"
	"github.com/Qthai16/ringqueue/utils"
)

var errFailures = errors.New("commands failed")

type cmdlineOpts struct {
	FailProbability int
	TimeLimit       time.Duration
	Seed            int64
	LogPath         string
	Echo            bool

	Ops    int
	Daemon bool
}

func defaultOpts() cmdlineOpts {
	return cmdlineOpts{
		FailProbability: config.FailProbability,
		TimeLimit:       config.TimeLimit,
		Seed:            config.Seed,
		LogPath:         config.LogPath,
	}
}

// newLogger builds the process logger. With a log path the file also takes
// over stderr, so panics end up next to the log records.
func newLogger(opts *cmdlineOpts, stderr io.Writer) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if config.Debug {
		level = utils.LevelTrace
	}
	utils.SetColorPrint(config.Color)
	if opts.LogPath == "" {
		return utils.NewLogger(stderr, level), func() {}, nil
	}
	f, err := utils.OpenLogFile(opts.LogPath)
	if err != nil {
		return nil, nil, err
	}
	if err := utils.RedirectFile(os.Stderr, f); err != nil {
		f.Close()
		return nil, nil, err
	}
	return utils.NewLogger(f, level), func() { f.Close() }, nil
}

func runScript(cmd *cobra.Command, opts *cmdlineOpts, args []string) error {
	logger, closeLog, err := newLogger(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	c := console.New(cmd.OutOrStdout(), console.Config{
		FailProbability: opts.FailProbability,
		TimeLimit:       opts.TimeLimit,
		Seed:            opts.Seed,
		Echo:            opts.Echo,
		Logger:          logger,
	})
	runErr := c.Run(in)
	closeErr := c.Close()
	if closeErr != nil {
		logger.Error("queue storage check failed", "error", closeErr)
	}
	if n := c.Failures(); n > 0 {
		logger.Warn("script finished with failures", "failures", n)
		return errors.Join(runErr, closeErr, fmt.Errorf("%w: %d", errFailures, n))
	}
	return errors.Join(runErr, closeErr)
}

func uniqPidFile() string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return fmt.Sprintf("qtest-fuzz.%d.pid", r.Intn(10000))
}

func runFuzz(cmd *cobra.Command, opts *cmdlineOpts) error {
	if opts.Daemon {
		cntxt := &daemon.Context{
			PidFileName: fmt.Sprintf("/tmp/%s", uniqPidFile()),
			PidFilePerm: 0644,
		}
		d, err := cntxt.Reborn()
		if err != nil {
			return fmt.Errorf("run as daemon: %w", err)
		}
		if d != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "fuzzing in background, pid %d\n", d.Pid)
			return nil
		}
		defer cntxt.Release()
	}

	logger, closeLog, err := newLogger(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		select {
		case sig := <-utils.WaitTerminate():
			logger.Info("fuzz interrupted", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("fuzz start", "ops", opts.Ops, "seed", opts.Seed, "fail", opts.FailProbability)
	stats, err := fuzz.Run(ctx, fuzz.Config{
		Ops:             opts.Ops,
		Seed:            opts.Seed,
		FailProbability: opts.FailProbability,
		Logger:          logger,
	})
	if stats != nil {
		stats.Render(cmd.OutOrStdout())
	}
	if err != nil {
		return err
	}
	logger.Info("fuzz done")
	return nil
}

func printEnv(w io.Writer) {
	vars := config.AsMap()
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := vars[k]
		fmt.Fprintf(w, "%-18s %-8v %s\n", v.Name, v.Value, v.Description)
	}
}

func newCLI() *cobra.Command {
	opts := defaultOpts()

	rootCmd := &cobra.Command{
		Use:   "qtest",
		Short: "Exercise a string queue and check its storage",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
	}
	rootCmd.PersistentFlags().IntVar(&opts.FailProbability, "fail", opts.FailProbability, "percent of allocations to refuse")
	rootCmd.PersistentFlags().Int64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	rootCmd.PersistentFlags().StringVar(&opts.LogPath, "log", opts.LogPath, "log file path")

	cobra.EnableCommandSorting = false

	runCmd := &cobra.Command{
		Use:   "run [script]",
		Short: "Run queue commands from a script or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, &opts, args)
		},
	}
	runCmd.Flags().DurationVar(&opts.TimeLimit, "limit", opts.TimeLimit, "time limit for a single command, 0 disables")
	runCmd.Flags().BoolVarP(&opts.Echo, "echo", "v", false, "echo commands")

	fuzzCmd := &cobra.Command{
		Use:   "fuzz",
		Short: "Compare the queue against a reference list under random operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFuzz(cmd, &opts)
		},
	}
	fuzzCmd.Flags().IntVar(&opts.Ops, "ops", 100000, "number of operations")
	fuzzCmd.Flags().BoolVar(&opts.Daemon, "daemon", false, "run in background")

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Show environment settings",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printEnv(cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(runCmd, fuzzCmd, envCmd)
	return rootCmd
}

func main() {
	cobra.CheckErr(newCLI().ExecuteContext(context.Background()))
}
