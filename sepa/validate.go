package sepa

import "fmt"

// ValidateBatch checks that the creditor and every collection item carry the
// fields the pain.008 format requires. All violations are collected and
// returned as human-readable problems, in input order; a nil result means the
// batch may be built. The function has no side effects.
func ValidateBatch(creditor CreditorData, items []CollectionItem) []string {
	var problems []string

	if creditor.Name == "" {
		problems = append(problems, "creditor name is missing")
	}
	if creditor.IBAN == "" {
		problems = append(problems, "creditor IBAN is missing")
	}
	if creditor.SchemeID == "" {
		problems = append(problems, "creditor scheme identifier is missing")
	}

	for _, item := range items {
		if item.Debtor == nil {
			problems = append(problems, fmt.Sprintf("collection %s has no debtor", item.ID))
			continue
		}
		if item.Debtor.IBAN == "" {
			problems = append(problems, fmt.Sprintf("debtor %s has no IBAN", item.Debtor.Name))
		}
		if item.Debtor.Mandate == nil {
			problems = append(problems, fmt.Sprintf("debtor %s has no direct debit mandate", item.Debtor.Name))
		}
		if item.Channel != ChannelDirectDebit {
			problems = append(problems, fmt.Sprintf("collection %s payment channel is %q, not direct debit", item.ID, item.Channel))
		}
		if !item.Amount.IsPositive() {
			problems = append(problems, fmt.Sprintf("collection %s amount %s is not positive", item.ID, item.Amount))
		} else if !item.Amount.Equal(item.Amount.Round(2)) {
			// Amounts are rejected, never rounded: the file must carry the
			// exact figure the billing layer produced.
			problems = append(problems, fmt.Sprintf("collection %s amount %s has more than two decimal places", item.ID, item.Amount))
		}
	}

	return problems
}
