package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/clearbooks/internal/config"
	"github.com/cleared-dev/clearbooks/internal/model"
	"github.com/cleared-dev/clearbooks/internal/savon"
)

func newPayloadCommand(opts *globalOptions) *cobra.Command {
	payloadCmd := &cobra.Command{
		Use:   "payload",
		Short: "Print the request body for a Clear Books call",
	}
	payloadCmd.AddCommand(newBankStatementPayloadCommand(opts))
	payloadCmd.AddCommand(newPaymentPayloadCommand(opts))
	return payloadCmd
}

func newBankStatementPayloadCommand(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "bank-statement <file>",
		Short: "Build an AddBankStatementLines body from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd.ErrOrStderr())
			cfg, err := opts.loadConfig(logger)
			if err != nil {
				return err
			}

			data, err := readAttributes(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			stmt, err := model.NewBankStatementFromMap(cfg.Defaults.ApplyStatementDefaults(data))
			if err != nil {
				return err
			}
			logger.Debugf("bank statement for account %d with %d lines", stmt.BankAccount(), len(stmt.StatementLines()))

			return render(cmd.OutOrStdout(), stmt.ToSavon(), pick(format, cfg.Output.Format), cfg.Output.Indent)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "output format (json or xml), default from config")

	return cmd
}

func newPaymentPayloadCommand(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "payment <file>",
		Short: "Build a CreatePayment body from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd.ErrOrStderr())
			cfg, err := opts.loadConfig(logger)
			if err != nil {
				return err
			}

			data, err := readAttributes(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			payment, err := model.NewPaymentFromMap(cfg.Defaults.ApplyPaymentDefaults(data))
			if err != nil {
				return err
			}
			if !payment.Type().Known() {
				logger.Warnf("payment type %q is neither %s nor %s", payment.Type(), model.PaymentTypePurchases, model.PaymentTypeSales)
			}
			if payment.EntityID() == 0 {
				logger.Warnf("entity_id is 0; the API will not match a customer or supplier")
			}

			return render(cmd.OutOrStdout(), payment.ToSavon(), pick(format, cfg.Output.Format), cfg.Output.Indent)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "output format (json or xml), default from config")

	return cmd
}

// readAttributes decodes a YAML or JSON mapping from path, or from stdin
// when path is "-".
func readAttributes(stdin io.Reader, path string) (map[string]any, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%s: no attributes", path)
	}
	return data, nil
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

func render(w io.Writer, h savon.Hash, format, indent string) error {
	var out []byte
	var err error
	switch format {
	case config.FormatJSON:
		out, err = json.MarshalIndent(h, "", indent)
	case config.FormatXML:
		out, err = savon.MarshalXML(h, indent)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("rendering %s: %w", format, err)
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}
