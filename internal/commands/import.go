package commands

import (
	"fmt"
	"os"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/clearbooks/internal/config"
	"github.com/cleared-dev/clearbooks/internal/importer"
	"github.com/cleared-dev/clearbooks/internal/model"
)

type importOptions struct {
	bankAccount int64
	name        string
	parser      string
	format      string
	archive     bool
}

func newImportCommand(opts *globalOptions) *cobra.Command {
	iopts := importOptions{}

	cmd := &cobra.Command{
		Use:   "import <file-or-directory>",
		Short: "Turn bank exports into AddBankStatementLines bodies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd.ErrOrStderr())
			cfg, err := opts.loadConfig(logger)
			if err != nil {
				return err
			}
			return runImport(cmd, logger, cfg, args[0], iopts)
		},
	}

	cmd.Flags().Int64Var(&iopts.bankAccount, "bank-account", 0, "Clear Books bank account id, default from config")
	cmd.Flags().StringVar(&iopts.name, "name", "", "statement name")
	cmd.Flags().StringVar(&iopts.parser, "parser", "", "export format (chase or xlsx), default from extension")
	cmd.Flags().StringVar(&iopts.format, "format", "", "output format (json or xml), default from config")
	cmd.Flags().BoolVar(&iopts.archive, "archive", false, "move imported files into processed/ (directories only)")

	return cmd
}

func runImport(cmd *cobra.Command, logger *log.Logger, cfg *config.Config, path string, opts importOptions) error {
	account := opts.bankAccount
	if account == 0 {
		account = int64(cfg.Defaults.StatementBankAccount)
	}
	if account == 0 {
		return fmt.Errorf("bank account required: pass --bank-account or set defaults.statement_bank_account")
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	registry := importer.DefaultRegistry()
	format := pick(opts.format, cfg.Output.Format)

	emit := func(file string) error {
		lines, err := registry.ParseFile(file, opts.parser)
		if err != nil {
			return err
		}
		logger.Debugf("%s: %d statement lines", file, len(lines))

		stmt := model.NewBankStatement(model.BankStatementAttrs{
			BankAccount:    account,
			StatementName:  opts.name,
			StatementLines: lines,
		})
		return render(cmd.OutOrStdout(), stmt.ToSavon(), format, cfg.Output.Indent)
	}

	if !info.IsDir() {
		return emit(path)
	}

	files, err := importer.Scan(path)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warnf("no exports found in %s", path)
		return nil
	}
	for _, f := range files {
		if err := emit(f.Path); err != nil {
			return err
		}
		if opts.archive {
			if err := importer.MarkProcessed(path, f.Name); err != nil {
				return err
			}
			logger.Infof("archived %s", f.Name)
		}
	}
	return nil
}
