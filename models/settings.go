package models

import "regexp"

// OrgProfile is the organization profile: identity plus the SEPA creditor
// fields required to generate remittances. Stored as key-value settings rows.
type OrgProfile struct {
	CompanyName      string `json:"company_name"` // commercial name
	LegalName        string `json:"legal_name"`
	TaxID            string `json:"tax_id"`
	IBAN             string `json:"iban"`
	BIC              string `json:"bic"`
	CreditorSchemeID string `json:"creditor_scheme_id"`
}

// Creditor scheme id: country code, two check digits, three-character
// creditor business code, 8-9 character national identifier.
var schemeIDPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Za-z0-9]{3}[A-Za-z0-9]{8,9}$`)

func (p *OrgProfile) Validate() string {
	if p.CreditorSchemeID != "" && !schemeIDPattern.MatchString(p.CreditorSchemeID) {
		return "creditor_scheme_id must be: 2-letter country code, 2 check digits, 3-character business code, 8-9 character national identifier"
	}
	return ""
}
