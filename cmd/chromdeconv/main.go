// Command chromdeconv separates overlapping chromatogram peaks into
// Gaussian components.
//
// Usage:
//
//	chromdeconv fit <file>      detect, fit and report one trace
//	chromdeconv detect <file>   list initial peak guesses
//	chromdeconv batch           process every matching file of a directory
//	chromdeconv synth <out>     write a synthetic trace
//
// Examples:
//
//	chromdeconv synth --peak 5:0.3:10 --peak 6:0.4:7 --noise 0.05 demo.arw
//	chromdeconv fit --min-height 1 --csv demo_peaks.csv demo.arw
//	chromdeconv batch --config chroma.toml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-chroma/internal/config"
	"github.com/cwbudde/algo-chroma/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "chromdeconv",
		Short:         "Gaussian peak deconvolution for chromatograms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "TOML settings file (defaults apply when empty)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "debug|info|warn|error (overrides the config file)")

	root.AddCommand(newFitCmd(g))
	root.AddCommand(newDetectCmd(g))
	root.AddCommand(newBatchCmd(g))
	root.AddCommand(newSynthCmd())
	return root
}

// load returns the settings file (or defaults) with the global overrides
// applied, and a logger writing to the command's error stream.
func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	cfg := config.Default()
	if g.configPath != "" {
		var err error
		if cfg, err = config.Load(g.configPath); err != nil {
			return nil, nil, err
		}
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	return cfg, logging.New(cmd.ErrOrStderr(), cfg.LogLevel), nil
}
