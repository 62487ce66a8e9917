package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/clearbooks/internal/model"
	"github.com/cleared-dev/clearbooks/internal/savon"
)

// FileName is the config file looked up in the working directory.
const FileName = "clearbooks.yaml"

// Output formats.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

// Config represents the top-level clearbooks.yaml configuration.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// OutputConfig controls how payloads are printed.
type OutputConfig struct {
	Format string `yaml:"format"` // "json" or "xml"
	Indent string `yaml:"indent"`
}

// DefaultsConfig holds attribute values used when an input omits them.
// Zero values are not applied.
type DefaultsConfig struct {
	StatementBankAccount int    `yaml:"statement_bank_account,omitempty"`
	PaymentBankAccount   string `yaml:"payment_bank_account,omitempty"`
	PaymentMethod        int    `yaml:"payment_method,omitempty"`
	PaymentType          string `yaml:"payment_type,omitempty"`
}

// Load reads a clearbooks.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format: FormatJSON,
			Indent: "  ",
		},
	}
}

// Validate checks values yaml cannot type-check.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case FormatJSON, FormatXML:
	default:
		return fmt.Errorf("output.format %q: want %s or %s", c.Output.Format, FormatJSON, FormatXML)
	}
	if t := model.PaymentType(c.Defaults.PaymentType); t != "" && !t.Known() {
		return fmt.Errorf("defaults.payment_type %q: want %s or %s", t, model.PaymentTypePurchases, model.PaymentTypeSales)
	}
	return nil
}

// ApplyStatementDefaults returns a copy of data with configured bank
// statement defaults filled in for absent keys.
func (d DefaultsConfig) ApplyStatementDefaults(data map[string]any) map[string]any {
	out := clone(data)
	if d.StatementBankAccount != 0 {
		setDefault(out, "bank_account", d.StatementBankAccount)
	}
	return out
}

// ApplyPaymentDefaults returns a copy of data with configured payment
// defaults filled in for absent keys.
func (d DefaultsConfig) ApplyPaymentDefaults(data map[string]any) map[string]any {
	out := clone(data)
	if d.PaymentBankAccount != "" {
		setDefault(out, "bank_account", d.PaymentBankAccount)
	}
	if d.PaymentMethod != 0 {
		setDefault(out, "payment_method", d.PaymentMethod)
	}
	if d.PaymentType != "" {
		setDefault(out, "type", d.PaymentType)
	}
	return out
}

func setDefault(data map[string]any, key string, v any) {
	if !savon.Has(data, key) {
		data[key] = v
	}
}

func clone(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
