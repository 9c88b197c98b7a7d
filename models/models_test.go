package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoneyDecimal(t *testing.T) {
	assert.True(t, Money(1250).Decimal().Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, "12.50", Money(1250).Decimal().StringFixed(2))
	assert.Equal(t, "0.05", Money(5).Decimal().StringFixed(2))
}

func TestClientInputValidate(t *testing.T) {
	ref := "MND-001"
	past := "2020-01-01"
	future := "2099-01-01"
	bad := "01/01/2020"

	tests := []struct {
		name  string
		input ClientInput
		want  string
	}{
		{name: "valid", input: ClientInput{Name: "Alice", MandateRef: &ref, MandateDate: &past}, want: ""},
		{name: "missing name", input: ClientInput{}, want: "name is required"},
		{name: "future mandate", input: ClientInput{Name: "Alice", MandateRef: &ref, MandateDate: &future}, want: "mandate_date must be before today"},
		{name: "bad date format", input: ClientInput{Name: "Alice", MandateDate: &bad}, want: "mandate_date must be in YYYY-MM-DD format"},
		{name: "date without ref", input: ClientInput{Name: "Alice", MandateDate: &past}, want: "mandate_ref is required when mandate_date is set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.input.Validate())
		})
	}
}

func TestInvoiceInputValidate(t *testing.T) {
	input := InvoiceInput{Amount: 1000}
	assert.Equal(t, "", input.Validate())
	assert.Equal(t, "pending", input.Status)
	assert.Equal(t, "direct_debit", input.PaymentMethod)

	assert.Equal(t, "amount must be positive", (&InvoiceInput{}).Validate())
	assert.Contains(t, (&InvoiceInput{Amount: 100, Status: "open"}).Validate(), "status must be one of")
	assert.Contains(t, (&InvoiceInput{Amount: 100, PaymentMethod: "card"}).Validate(), "payment_method must be one of")
}

func TestOrgProfileValidate(t *testing.T) {
	assert.Equal(t, "", (&OrgProfile{}).Validate()) // empty profile is allowed, remittance generation checks completeness
	assert.Equal(t, "", (&OrgProfile{CreditorSchemeID: "ES50000B12345678"}).Validate())
	assert.Contains(t, (&OrgProfile{CreditorSchemeID: "nonsense"}).Validate(), "creditor_scheme_id")
}
