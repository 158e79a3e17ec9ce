package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/codedrill/internal/logging"
)

// Process exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitFatal  = 2
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose bool
	flagQuiet   bool
	flagConfig  string
	flagNoColor bool
)

// rootCmd is the base command for drill.
var rootCmd = &cobra.Command{
	Use:   "drill",
	Short: "Practice coding exercises against a remote judge",
	Long: `drill runs local solutions to numbered coding exercises against a remote
judging service and renders the judge's verdict in the terminal.

Solution files are named <id>.<slug>.<ext>, for example 1.two-sum.cpp.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Check env vars for flags not explicitly set on command line.
		if !cmd.Flags().Changed("verbose") && os.Getenv("DRILL_VERBOSE") != "" {
			flagVerbose = true
		}
		if !cmd.Flags().Changed("quiet") && os.Getenv("DRILL_QUIET") != "" {
			flagQuiet = true
		}
		if !cmd.Flags().Changed("no-color") && (os.Getenv("NO_COLOR") != "" || os.Getenv("DRILL_NO_COLOR") != "") {
			flagNoColor = true
		}

		logging.Setup(logging.Options{
			Verbose: flagVerbose,
			Quiet:   flagQuiet,
			JSON:    os.Getenv("DRILL_LOG_FORMAT") == "json",
		})

		if flagNoColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose (debug) output (env: DRILL_VERBOSE)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all output except errors (env: DRILL_QUIET)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to drill.toml config file")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output (env: DRILL_NO_COLOR, NO_COLOR)")
}

// exitError carries an exit code for an error that has already been
// reported to the user.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// reported marks err as already reported with the given exit code.
func reported(code int, err error) error {
	return &exitError{code: code, err: err}
}

// Execute runs the root command and returns the exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintln(os.Stderr, err)
	return exitFailed
}

// NewRootCmd returns a new instance of the root command for use in external
// tools such as the shell completion generator and man page generator. It
// initialises a fresh cobra command tree with the same persistent flags and
// PersistentPreRunE as the global rootCmd so that generated docs and
// completions include all flags.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               rootCmd.Use,
		Short:             rootCmd.Short,
		Long:              rootCmd.Long,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rootCmd.PersistentPreRunE,
	}

	// These use local variables (not the package-level flags) so the
	// exported command is safe for concurrent use by generators.
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose (debug) output (env: DRILL_VERBOSE)")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors (env: DRILL_QUIET)")
	cmd.PersistentFlags().String("config", "", "Path to drill.toml config file")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output (env: DRILL_NO_COLOR, NO_COLOR)")

	for _, child := range rootCmd.Commands() {
		cmd.AddCommand(child)
	}
	return cmd
}
