// Package chart holds the chart of accounts: the registry that resolves
// posting codes like "01-0450" (optionally bracketed, as spreadsheet column
// headers tend to be) to accounts.
package chart

import (
	"fmt"
	"regexp"
	"strings"

	"bookkeeping/internal/models"
)

var codePattern = regexp.MustCompile(`^(\d{2})-(\d{4})$`)

// Code is a parsed "{element}-{number}" account code.
type Code struct {
	Element models.Element
	Number  string
}

func (c Code) String() string {
	return fmt.Sprintf("%s-%s", string(c.Element), c.Number)
}

// ParseCode reads an account code token. Surrounding brackets are stripped,
// so both "03-0450" and "[03-0450]" parse. A token that is not an account
// code reports ok=false; that is an expected outcome, not an error, because
// callers use it to tell posting columns from metadata columns.
func ParseCode(token string) (Code, bool) {
	trimmed := strings.TrimSpace(token)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")
	match := codePattern.FindStringSubmatch(trimmed)
	if match == nil {
		return Code{}, false
	}
	element := models.Element(match[1])
	if !element.Valid() {
		return Code{}, false
	}
	return Code{Element: element, Number: match[2]}, true
}

// UnknownAccountError reports a configured account code with no matching
// account in the chart. Raw dump columns never produce it; only fixed
// accounts from the registry configuration do.
type UnknownAccountError struct {
	Code string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("chart: no account with code %s", e.Code)
}

// Chart is an immutable snapshot of the account registry, loaded once per
// import batch.
type Chart struct {
	byCode map[Code]models.Account
}

func New(accounts []models.Account) *Chart {
	byCode := make(map[Code]models.Account, len(accounts))
	for _, account := range accounts {
		byCode[Code{Element: account.Element, Number: account.Number}] = account
	}
	return &Chart{byCode: byCode}
}

func (c *Chart) Len() int {
	return len(c.byCode)
}

// Resolve maps a column header or cell token to an account. Non-code tokens
// and codes absent from the chart report ok=false.
func (c *Chart) Resolve(token string) (models.Account, bool) {
	code, ok := ParseCode(token)
	if !ok {
		return models.Account{}, false
	}
	account, ok := c.byCode[code]
	return account, ok
}

// Get returns the account for a known-good code, failing with
// *UnknownAccountError when the chart has no such account.
func (c *Chart) Get(code Code) (models.Account, error) {
	account, ok := c.byCode[code]
	if !ok {
		return models.Account{}, &UnknownAccountError{Code: code.String()}
	}
	return account, nil
}
