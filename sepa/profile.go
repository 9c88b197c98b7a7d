package sepa

// Profile is the flat organization profile read from application settings.
type Profile struct {
	TradeName string
	LegalName string
	IBAN      string
	BIC       string
	SchemeID  string
}

// fallbackCreditorName is used only when the profile carries no name at all.
const fallbackCreditorName = "Creditor"

// CreditorFromProfile maps an organization profile to the creditor fields the
// pain.008 format needs. It reports false when the SEPA identifiers are not
// configured, instead of returning a partially usable creditor, so the caller
// can tell the user to complete the profile rather than produce an invalid
// file. The name prefers the trade name, then the legal name.
func CreditorFromProfile(p Profile) (CreditorData, bool) {
	if p.IBAN == "" || p.SchemeID == "" {
		return CreditorData{}, false
	}

	name := p.TradeName
	if name == "" {
		name = p.LegalName
	}
	if name == "" {
		name = fallbackCreditorName
	}

	return CreditorData{
		Name:     name,
		IBAN:     p.IBAN,
		BIC:      p.BIC,
		SchemeID: p.SchemeID,
	}, true
}
