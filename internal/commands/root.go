package commands

import (
	"fmt"
	"io"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/clearbooks/internal/buildinfo"
	"github.com/cleared-dev/clearbooks/internal/config"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	verbose    bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "clearbooks",
		Short:   "Build Clear Books SOAP request payloads",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.FileName, "config file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newPayloadCommand(opts))
	rootCmd.AddCommand(newImportCommand(opts))

	return rootCmd
}

func (o *globalOptions) logger(w io.Writer) *log.Logger {
	l := log.New("clearbooks")
	l.SetOutput(w)
	l.SetHeader("${level} ${prefix}")
	if o.verbose {
		l.SetLevel(log.DEBUG)
	} else {
		l.SetLevel(log.WARN)
	}
	return l
}

// loadConfig reads the config file, falling back to defaults when it does
// not exist.
func (o *globalOptions) loadConfig(logger *log.Logger) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, err
	}
	logger.Debugf("config %s: output=%s", o.configPath, cfg.Output.Format)
	return cfg, nil
}
