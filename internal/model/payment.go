package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/clearbooks/internal/coerce"
	"github.com/cleared-dev/clearbooks/internal/savon"
)

// PaymentType says which ledger a payment belongs to.
type PaymentType string

const (
	PaymentTypePurchases PaymentType = "purchases"
	PaymentTypeSales     PaymentType = "sales"
)

// Known reports whether t is one of the types the API documents. Payments
// of other types are still sent as given.
func (t PaymentType) Known() bool {
	return t == PaymentTypePurchases || t == PaymentTypeSales
}

// Invoice allocates part of a payment to an invoice.
type Invoice struct {
	ID     int64
	Amount decimal.Decimal
}

// PaymentAttrs are the attributes a Payment is built from.
type PaymentAttrs struct {
	AccountingDate time.Time
	Type           PaymentType
	Description    string
	Amount         decimal.Decimal
	EntityID       int64 // customer or supplier
	PaymentMethod  int64
	BankAccount    string // account code
	Invoices       []Invoice
}

// PaymentAttrsFromMap reads payment attributes from a loosely typed mapping.
// entity_id and payment_method are read leniently: anything that does not
// start with digits becomes 0.
func PaymentAttrsFromMap(data map[string]any) (PaymentAttrs, error) {
	date, err := coerce.Date(savon.Value(data, "accounting_date"))
	if err != nil {
		return PaymentAttrs{}, fmt.Errorf("accounting_date: %w", err)
	}

	amount, err := coerce.Decimal(savon.Value(data, "amount"))
	if err != nil {
		return PaymentAttrs{}, fmt.Errorf("amount: %w", err)
	}

	recs, err := records(data, "invoices")
	if err != nil {
		return PaymentAttrs{}, err
	}
	invoices := make([]Invoice, 0, len(recs))
	for i, rec := range recs {
		invAmount, err := coerce.LenientDecimal(savon.Value(rec, "amount"))
		if err != nil {
			return PaymentAttrs{}, fmt.Errorf("invoices[%d].amount: %w", i, err)
		}
		invoices = append(invoices, Invoice{
			ID:     coerce.LenientInt(savon.Value(rec, "id")),
			Amount: invAmount,
		})
	}

	return PaymentAttrs{
		AccountingDate: date,
		Type:           PaymentType(coerce.String(savon.Value(data, "type"))),
		Description:    coerce.String(savon.Value(data, "description")),
		Amount:         amount,
		EntityID:       coerce.LenientInt(savon.Value(data, "entity_id")),
		PaymentMethod:  coerce.LenientInt(savon.Value(data, "payment_method")),
		BankAccount:    coerce.String(savon.Value(data, "bank_account")),
		Invoices:       invoices,
	}, nil
}

// Payment records money received from a customer or paid to a supplier
// (the CreatePayment call).
type Payment struct {
	attrs PaymentAttrs
}

// NewPayment builds a Payment. The invoices are copied.
func NewPayment(attrs PaymentAttrs) *Payment {
	attrs.Invoices = append([]Invoice(nil), attrs.Invoices...)
	return &Payment{attrs: attrs}
}

// NewPaymentFromMap builds a Payment from a loosely typed mapping.
func NewPaymentFromMap(data map[string]any) (*Payment, error) {
	attrs, err := PaymentAttrsFromMap(data)
	if err != nil {
		return nil, fmt.Errorf("payment: %w", err)
	}
	return NewPayment(attrs), nil
}

func (p *Payment) AccountingDate() time.Time { return p.attrs.AccountingDate }
func (p *Payment) Type() PaymentType         { return p.attrs.Type }
func (p *Payment) Description() string       { return p.attrs.Description }
func (p *Payment) Amount() decimal.Decimal   { return p.attrs.Amount }
func (p *Payment) EntityID() int64           { return p.attrs.EntityID }
func (p *Payment) PaymentMethod() int64      { return p.attrs.PaymentMethod }
func (p *Payment) BankAccount() string       { return p.attrs.BankAccount }

// Invoices returns a copy of the invoice allocations.
func (p *Payment) Invoices() []Invoice {
	return append([]Invoice(nil), p.attrs.Invoices...)
}

// ToSavon returns the CreatePayment request body.
func (p *Payment) ToSavon() savon.Hash {
	invoices := make([]savon.Hash, 0, len(p.attrs.Invoices))
	for _, inv := range p.attrs.Invoices {
		invoices = append(invoices, savon.Hash{
			savon.Attr("id"):     inv.ID,
			savon.Attr("amount"): coerce.Float(inv.Amount),
		})
	}

	return savon.Hash{
		"payment": savon.Hash{
			savon.Attr("accountingDate"): p.attrs.AccountingDate.Format(time.DateOnly),
			savon.Attr("type"):           string(p.attrs.Type),
			savon.Attr("amount"):         coerce.Float(p.attrs.Amount),
			savon.Attr("entityId"):       p.attrs.EntityID,
			savon.Attr("paymentMethod"):  p.attrs.PaymentMethod,
			savon.Attr("bankAccount"):    p.attrs.BankAccount,
			"description":                p.attrs.Description,
			"invoices":                   savon.Hash{"invoice": invoices},
		},
	}
}
