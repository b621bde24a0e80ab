package subledgers

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bookkeeping/internal/chart"
)

// AccountsConfig names the fixed accounts the registry needs: the GST
// debit/credit pair and one control account per subledger type that closes
// its balance. Loaded once at startup; the registry is immutable afterwards.
type AccountsConfig struct {
	GSTDRAccount    string            `yaml:"gst_dr_account"`
	GSTCRAccount    string            `yaml:"gst_cr_account"`
	ControlAccounts map[string]string `yaml:"control_accounts"`
}

// DefaultAccountsConfig matches the seed chart in migrations/.
func DefaultAccountsConfig() AccountsConfig {
	return AccountsConfig{
		GSTDRAccount: "03-0713",
		GSTCRAccount: "03-0733",
		ControlAccounts: map[string]string{
			string(KindSale):            "03-0410",
			string(KindExpense):         "03-0430",
			string(KindCreditorInvoice): "03-0300",
		},
	}
}

// LoadAccountsConfig reads the fixed-account YAML file. An empty path keeps
// the defaults.
func LoadAccountsConfig(path string) (AccountsConfig, error) {
	cfg := DefaultAccountsConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return AccountsConfig{}, fmt.Errorf("reading accounts config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return AccountsConfig{}, fmt.Errorf("parsing accounts config: %w", err)
	}
	return cfg, nil
}

func (c AccountsConfig) parseCode(raw, what string) (chart.Code, error) {
	code, ok := chart.ParseCode(raw)
	if !ok {
		return chart.Code{}, fmt.Errorf("accounts config: %s is not an account code: %q", what, raw)
	}
	return code, nil
}
