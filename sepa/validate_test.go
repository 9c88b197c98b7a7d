package sepa

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCreditor() CreditorData {
	return CreditorData{
		Name:     "Acme Subscriptions SL",
		IBAN:     "ES9121000418450200051332",
		BIC:      "CAIXESBBXXX",
		SchemeID: "ES50000B12345678",
	}
}

func testDebtor(ref, name string) *Debtor {
	return &Debtor{
		Ref:  ref,
		Name: name,
		IBAN: "ES7921000813610123456789",
		Mandate: &Mandate{
			Reference:     "MANDATE-" + ref,
			SignatureDate: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		},
	}
}

func testItem(id string, amount string, due time.Time, debtor *Debtor) CollectionItem {
	return CollectionItem{
		ID:      id,
		Amount:  decimal.RequireFromString(amount),
		DueDate: due,
		Channel: ChannelDirectDebit,
		Debtor:  debtor,
	}
}

func TestValidateBatch_Valid(t *testing.T) {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []CollectionItem{
		testItem("INV-1", "12.50", due, testDebtor("c1", "Alice")),
		testItem("INV-2", "30.00", due, testDebtor("c2", "Bob")),
	}

	assert.Empty(t, ValidateBatch(testCreditor(), items))
}

func TestValidateBatch_CreditorFields(t *testing.T) {
	creditor := testCreditor()
	creditor.SchemeID = ""
	problems := ValidateBatch(creditor, nil)

	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "creditor scheme identifier")
}

func TestValidateBatch_CollectsAllProblems(t *testing.T) {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	noMandate := testDebtor("c1", "Alice")
	noMandate.Mandate = nil
	noIBAN := testDebtor("c2", "Bob")
	noIBAN.IBAN = ""

	wrongChannel := testItem("INV-3", "5.00", due, testDebtor("c3", "Carol"))
	wrongChannel.Channel = "transfer"

	items := []CollectionItem{
		testItem("INV-1", "12.50", due, noMandate),
		testItem("INV-2", "30.00", due, noIBAN),
		wrongChannel,
		{ID: "INV-4", Amount: decimal.RequireFromString("5.00"), DueDate: due, Channel: ChannelDirectDebit},
	}

	problems := ValidateBatch(testCreditor(), items)
	require.Len(t, problems, 4)
	assert.Contains(t, problems[0], "Alice")
	assert.Contains(t, problems[0], "mandate")
	assert.Contains(t, problems[1], "Bob")
	assert.Contains(t, problems[1], "IBAN")
	assert.Contains(t, problems[2], "INV-3")
	assert.Contains(t, problems[2], "not direct debit")
	assert.Contains(t, problems[3], "INV-4")
	assert.Contains(t, problems[3], "no debtor")
}

func TestValidateBatch_Amounts(t *testing.T) {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		amount  string
		problem string
	}{
		{name: "two decimals ok", amount: "9.99", problem: ""},
		{name: "trailing zeros ok", amount: "9.9900", problem: ""},
		{name: "three decimals rejected", amount: "9.999", problem: "more than two decimal places"},
		{name: "zero rejected", amount: "0", problem: "not positive"},
		{name: "negative rejected", amount: "-4.20", problem: "not positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []CollectionItem{testItem("INV-1", tt.amount, due, testDebtor("c1", "Alice"))}
			problems := ValidateBatch(testCreditor(), items)
			if tt.problem == "" {
				assert.Empty(t, problems)
				return
			}
			require.Len(t, problems, 1)
			assert.Contains(t, problems[0], tt.problem)
		})
	}
}

func TestValidateBatch_DoesNotMutateInputs(t *testing.T) {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	debtor := testDebtor("c1", "Alice")
	items := []CollectionItem{testItem("INV-1", "12.50", due, debtor)}

	ValidateBatch(testCreditor(), items)

	assert.Equal(t, "Alice", debtor.Name)
	assert.Equal(t, "INV-1", items[0].ID)
	require.NotNil(t, debtor.Mandate)
}
