package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/clearbooks/internal/coerce"
	"github.com/cleared-dev/clearbooks/internal/savon"
)

// StatementLine is one transaction on a bank statement.
type StatementLine struct {
	Description string
	Date        string
	Amount      decimal.Decimal
}

// BankStatementAttrs are the attributes a BankStatement is built from.
type BankStatementAttrs struct {
	BankAccount    int64
	StatementName  string // optional
	StatementLines []StatementLine
}

// BankStatementAttrsFromMap reads bank statement attributes from a loosely
// typed mapping. bank_account is required.
func BankStatementAttrsFromMap(data map[string]any) (BankStatementAttrs, error) {
	account, err := savon.Fetch(data, "bank_account")
	if err != nil {
		return BankStatementAttrs{}, err
	}

	recs, err := records(data, "statement_lines")
	if err != nil {
		return BankStatementAttrs{}, err
	}
	lines := make([]StatementLine, 0, len(recs))
	for i, rec := range recs {
		amount, err := coerce.LenientDecimal(savon.Value(rec, "amount"))
		if err != nil {
			return BankStatementAttrs{}, fmt.Errorf("statement_lines[%d].amount: %w", i, err)
		}
		lines = append(lines, StatementLine{
			Description: coerce.String(savon.Value(rec, "description")),
			Date:        coerce.String(savon.Value(rec, "date")),
			Amount:      amount,
		})
	}

	return BankStatementAttrs{
		BankAccount:    coerce.LenientInt(account),
		StatementName:  coerce.String(savon.Value(data, "statement_name")),
		StatementLines: lines,
	}, nil
}

// BankStatement adds lines to a bank account's statement
// (the AddBankStatementLines call).
type BankStatement struct {
	bankAccount    int64
	statementName  string
	statementLines []StatementLine
}

// NewBankStatement builds a BankStatement. The lines are copied.
func NewBankStatement(attrs BankStatementAttrs) *BankStatement {
	return &BankStatement{
		bankAccount:    attrs.BankAccount,
		statementName:  attrs.StatementName,
		statementLines: append([]StatementLine(nil), attrs.StatementLines...),
	}
}

// NewBankStatementFromMap builds a BankStatement from a loosely typed mapping.
func NewBankStatementFromMap(data map[string]any) (*BankStatement, error) {
	attrs, err := BankStatementAttrsFromMap(data)
	if err != nil {
		return nil, fmt.Errorf("bank statement: %w", err)
	}
	return NewBankStatement(attrs), nil
}

func (s *BankStatement) BankAccount() int64   { return s.bankAccount }
func (s *BankStatement) StatementName() string { return s.statementName }

// StatementLines returns a copy of the statement lines.
func (s *BankStatement) StatementLines() []StatementLine {
	return append([]StatementLine(nil), s.statementLines...)
}

// ToSavon returns the AddBankStatementLines request body.
func (s *BankStatement) ToSavon() savon.Hash {
	lines := make([]savon.Hash, 0, len(s.statementLines))
	for _, l := range s.statementLines {
		lines = append(lines, savon.Hash{
			savon.Attr("description"): l.Description,
			savon.Attr("date"):        l.Date,
			savon.Attr("amount"):      coerce.Float(l.Amount),
		})
	}

	return savon.Hash{
		"add_bank_statement_lines": savon.Hash{
			savon.Attr("bank_account"):   s.bankAccount,
			savon.Attr("statement_name"): s.statementName,
			"statement_lines":            savon.Hash{"bank_statement_line": lines},
		},
	}
}
