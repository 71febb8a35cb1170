package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version string
	commit  string
	date    string

	configPath string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kipple",
	Short: "Kipple - stochastic signal-graph synthesizer",
	Long: `Kipple grows synthesizer patches at random.

Starting from a single note source, kipple applies probabilistic mutations
(add a synth, add an effect, split a track, terminate one, rejoin two)
until the patch reaches a target module count. The tail of every open
audio track then feeds the output, and the attached controllers that no
binding drives are exposed under generated labels.

The same seed and configuration always produce the same patch.`,
	Version: version,
	// Show help instead of silently succeeding on a bare invocation
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "kipple.yml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every mutation the generator applies")
}

// newLogger returns a development logger at debug level with --verbose and a
// production logger that only reports warnings otherwise.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	return cfg.Build()
}
