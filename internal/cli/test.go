package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AbdelazizMoustafa10m/codedrill/internal/config"
	"github.com/AbdelazizMoustafa10m/codedrill/internal/exercise"
	"github.com/AbdelazizMoustafa10m/codedrill/internal/judge"
	"github.com/AbdelazizMoustafa10m/codedrill/internal/logging"
	"github.com/AbdelazizMoustafa10m/codedrill/internal/testrun"
	"github.com/AbdelazizMoustafa10m/codedrill/internal/tui"
)

// testFlags holds parsed flag values for the test command.
type testFlags struct {
	// Interactive reads the test case from stdin.
	Interactive bool
	// TestCase is a literal test case; `\n` sequences become newlines.
	TestCase string
	// NoCache bypasses the exercise cache.
	NoCache bool
}

// Terminal probes, replaced in tests.
var (
	stdinIsTerminal  = func() bool { return isTerminal(os.Stdin) }
	stderrIsTerminal = func() bool { return isTerminal(os.Stderr) }
)

// newTestCmd creates the "drill test" command.
func newTestCmd() *cobra.Command {
	var flags testFlags

	cmd := &cobra.Command{
		Use:     "test <filename>",
		Aliases: []string{"run"},
		Short:   "Test a solution against a single test case",
		Long: `Submit a solution file and one test case to the judge and show the result.

The exercise id and language are taken from the file name (<id>.<slug>.<ext>).
The test case comes from, in order: stdin when --interactive is set, the
--testcase flag, or the exercise's default test case.`,
		Example: `  # Test code with the default test case
  drill test 1.two-sum.cpp

  # Test code with a customized test case
  drill test 1.two-sum.cpp -t "[1,2,3]\n4"

  # Read the test case from stdin
  drill test 1.two-sum.cpp -i < case.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, args[0], flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.Interactive, "interactive", "i", false, "Provide test case interactively")
	cmd.Flags().StringVarP(&flags.TestCase, "testcase", "t", "", "Provide test case")
	cmd.Flags().BoolVar(&flags.NoCache, "no-cache", false, "Fetch the exercise from the judge, skipping the local cache")

	return cmd
}

func init() {
	rootCmd.AddCommand(newTestCmd())
}

// runTest is the RunE implementation for the test command. Failures are
// reported through the logger and returned as already-reported errors that
// carry the exit code.
func runTest(cmd *cobra.Command, filename string, flags testFlags) error {
	logger := logging.New("test")

	var overrides config.CLIOverrides
	if flags.NoCache {
		noCache := true
		overrides.NoCache = &noCache
	}
	resolved, _, err := loadAndResolveConfig(&overrides)
	if err != nil {
		return err
	}
	cfg := resolved.Config

	detector, err := exercise.NewDetector(cfg.LanguagePatterns())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	promptOnTerminal := flags.Interactive && stdinIsTerminal()
	showSpinner := !flagQuiet && !promptOnTerminal && stderrIsTerminal()

	opts := []testrun.RunnerOption{
		testrun.WithLogger(logger),
		testrun.WithTimeout(cfg.Judge.Timeout),
		testrun.WithStdin(stdinSource(cmd.InOrStdin(), promptOnTerminal)),
	}
	var events chan testrun.Event
	if showSpinner {
		events = make(chan testrun.Event, 16)
		opts = append(opts, testrun.WithEvents(events))
	}
	runner := testrun.NewRunner(newJudgeClient(cfg), detector, nil, opts...)

	logger.Debug("running test", "file", filename, "judge", cfg.Judge.BaseURL, "cache", cfg.Cache.IsEnabled())

	var res *testrun.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if events != nil {
			defer close(events)
		}
		var runErr error
		res, runErr = runner.Run(gctx, testrun.Options{
			Filename:    filename,
			TestCase:    flags.TestCase,
			Interactive: flags.Interactive,
			UseCache:    !flags.NoCache,
		})
		return runErr
	})
	if showSpinner {
		g.Go(func() error {
			if err := tui.RunSpinner(gctx, os.Stderr, events); err != nil {
				logger.Debug("spinner stopped", "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reportRunError(logger, err)
	}

	// The spinner has exited by now, so the result never interleaves with it.
	renderer := testrun.NewRenderer(cmd.OutOrStdout(), flagNoColor)
	if err := renderer.Render(res.Groups); err != nil {
		return reportRunError(logger, err)
	}
	return nil
}

// reportRunError logs err once and maps it to an exit code.
func reportRunError(logger *log.Logger, err error) error {
	if testrun.IsFatal(err) {
		logging.Report(logger, logging.LevelFatal, err)
		return reported(exitFatal, err)
	}
	logging.Report(logger, logging.LevelError, err)
	return reported(exitFailed, err)
}

// newJudgeClient builds the HTTP judge client, wrapped in the exercise cache
// when it is enabled.
func newJudgeClient(cfg *config.Config) judge.Client {
	httpClient := judge.NewHTTPClient(judge.HTTPConfig{
		BaseURL:      cfg.Judge.BaseURL,
		Token:        cfg.Judge.Token,
		PollInterval: cfg.Judge.PollInterval,
		Logger:       logging.New("judge"),
	})
	if !cfg.Cache.IsEnabled() {
		return httpClient
	}
	cache := judge.NewFileCache(cfg.Cache.Dir, httpClient.BaseURL(), cfg.Cache.TTL)
	return judge.NewCachedClient(httpClient, cache, logging.New("cache"))
}

// stdinSource picks how interactive test cases are read: a prompt when a
// person is typing, otherwise a plain read to EOF.
func stdinSource(in io.Reader, prompt bool) testrun.StdinReader {
	if prompt {
		return testrun.StdinFunc(tui.PromptTestCase)
	}
	return testrun.ReaderStdin(in)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
