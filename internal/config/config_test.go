package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Output.Format = FormatXML
	cfg.Defaults = DefaultsConfig{
		StatementBankAccount: 1200,
		PaymentBankAccount:   "7502001",
		PaymentMethod:        3,
		PaymentType:          "sales",
	}

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, "  ", cfg.Output.Indent)
	assert.Zero(t, cfg.Defaults)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("defaults:\n  payment_method: 4\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, 4, cfg.Defaults.PaymentMethod)
}

func TestLoad_BadFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: csv\n"), 0o644))

	_, err := LoadOrDefault(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("output: [\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "format: json")
	assert.NotContains(t, contents, "payment_method")
}

func TestApplyPaymentDefaults(t *testing.T) {
	d := DefaultsConfig{PaymentBankAccount: "7502001", PaymentMethod: 3, PaymentType: "purchases"}
	in := map[string]any{"paymentMethod": 9, "amount": "1"}

	out := d.ApplyPaymentDefaults(in)

	assert.Equal(t, "7502001", out["bank_account"])
	assert.Equal(t, "purchases", out["type"])
	assert.Equal(t, 9, out["paymentMethod"])
	assert.NotContains(t, out, "payment_method")
	assert.NotContains(t, in, "bank_account", "input must not be modified")
}

func TestApplyStatementDefaults(t *testing.T) {
	d := DefaultsConfig{StatementBankAccount: 1200}
	assert.Equal(t, 1200, d.ApplyStatementDefaults(map[string]any{})["bank_account"])
	assert.Equal(t, 5, d.ApplyStatementDefaults(map[string]any{"bank_account": 5})["bank_account"])

	empty := DefaultsConfig{}
	assert.NotContains(t, empty.ApplyStatementDefaults(map[string]any{}), "bank_account")
}

func TestLoad_BadPaymentType(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("defaults:\n  payment_type: refunds\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `defaults.payment_type "refunds"`)
}

func TestValidate_PaymentType(t *testing.T) {
	for _, pt := range []string{"", "purchases", "sales"} {
		cfg := Default()
		cfg.Defaults.PaymentType = pt
		assert.NoError(t, cfg.Validate(), "payment_type %q", pt)
	}

	cfg := Default()
	cfg.Defaults.PaymentType = "Sales"
	assert.Error(t, cfg.Validate())
}
