package sepa

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	paymentMethodDirectDebit = "DD"
	serviceLevelSEPA         = "SEPA"
	localInstrumentCore      = "CORE"
	chargeBearerSLEV         = "SLEV"
	schemeNameSEPA           = "SEPA"

	// EndToEndId allows 35 characters; with the fixed prefix, 25 characters
	// of the source collection id fit.
	endToEndPrefix   = "DD"
	maxItemIDLen     = 25
	maxRemittanceLen = 140
)

// Builder renders grouped transactions into a pain.008 document. The clock
// and the random id suffix are injectable so tests can pin the output.
type Builder struct {
	Now      func() time.Time
	SuffixFn func() string
	Currency string
}

// NewBuilder returns a builder using the wall clock, a uuid-derived suffix,
// and EUR amounts.
func NewBuilder() *Builder {
	return &Builder{
		Now:      time.Now,
		SuffixFn: randomSuffix,
		Currency: "EUR",
	}
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Build assembles the document for the given payment groups and computes the
// per-block and header transaction counts and control sums. Validation is a
// precondition: a transaction that reaches the builder without a debtor or a
// mandate aborts the whole build with an error naming the debtor, because
// emitting a block with a missing mandate reference would be silently
// rejected by the bank.
func (b *Builder) Build(groups []PaymentGroup, creditor CreditorData) (*Document, error) {
	now := b.Now()
	msgID := fmt.Sprintf("MSG-%s-%s", now.Format("20060102150405"), b.SuffixFn())

	doc := &Document{Xmlns: painNamespace}

	total := decimal.Zero
	count := 0
	for i, group := range groups {
		block := PmtInf{
			PmtInfId:  fmt.Sprintf("%s-P%02d", msgID, i+1),
			PmtMtd:    paymentMethodDirectDebit,
			BtchBookg: true,
			PmtTpInf: PmtTpInf{
				SvcLvl:    CdWrap{Cd: serviceLevelSEPA},
				LclInstrm: CdWrap{Cd: localInstrumentCore},
				SeqTp:     group.Sequence,
			},
			ReqdColltnDt: group.CollectionDate.Format("2006-01-02"),
			Cdtr:         Pty{Nm: creditor.Name},
			CdtrAcct:     Acct{Id: AcctId{IBAN: creditor.IBAN}},
			ChrgBr:       chargeBearerSLEV,
			CdtrSchmeId: Pty{Id: &PtyId{PrvtId: PrvtId{Othr: Othr{
				Id:      creditor.SchemeID,
				SchmeNm: &SchmeNm{Prtry: schemeNameSEPA},
			}}}},
		}
		if creditor.BIC != "" {
			block.CdtrAgt = &Agt{FinInstnId: FinInstnId{BIC: creditor.BIC}}
		}

		blockSum := decimal.Zero
		for _, tx := range group.Transactions {
			info, err := b.buildTransaction(tx)
			if err != nil {
				return nil, err
			}
			block.DrctDbtTxInf = append(block.DrctDbtTxInf, info)
			blockSum = blockSum.Add(tx.Item.Amount)
		}

		block.NbOfTxs = len(block.DrctDbtTxInf)
		block.CtrlSum = blockSum.StringFixed(2)
		total = total.Add(blockSum)
		count += block.NbOfTxs

		doc.CstmrDrctDbtInitn.PmtInf = append(doc.CstmrDrctDbtInitn.PmtInf, block)
	}

	doc.CstmrDrctDbtInitn.GrpHdr = GrpHdr{
		MsgId:    msgID,
		CreDtTm:  now.Format("2006-01-02T15:04:05"),
		NbOfTxs:  count,
		CtrlSum:  total.StringFixed(2),
		InitgPty: Pty{Nm: creditor.Name},
	}

	if err := checkTotals(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (b *Builder) buildTransaction(tx DirectDebitTransaction) (DrctDbtTxInf, error) {
	debtor := tx.Item.Debtor
	if debtor == nil {
		return DrctDbtTxInf{}, fmt.Errorf("collection %s has no debtor; batch was not validated", tx.Item.ID)
	}
	if debtor.Mandate == nil {
		return DrctDbtTxInf{}, fmt.Errorf("debtor %s has no mandate; batch was not validated", debtor.Name)
	}

	info := DrctDbtTxInf{
		PmtId:    PmtId{EndToEndId: endToEndID(tx.Item.ID)},
		InstdAmt: Amt{Value: tx.Item.Amount.StringFixed(2), Ccy: b.Currency},
		DrctDbtTx: DrctDbtTx{MndtRltdInf: MndtRltdInf{
			MndtId:    debtor.Mandate.Reference,
			DtOfSgntr: debtor.Mandate.SignatureDate.Format("2006-01-02"),
		}},
		DbtrAgt:  debtorAgent(debtor.BIC),
		Dbtr:     debtorParty(debtor),
		DbtrAcct: Acct{Id: AcctId{IBAN: debtor.IBAN}},
	}
	if text := remittanceText(tx.Item); text != "" {
		info.RmtInf = &RmtInf{Ustrd: text}
	}
	return info, nil
}

// checkTotals re-adds the per-block figures from the finished tree and
// compares them against the header, so an inconsistency is caught before the
// file ever leaves the process.
func checkTotals(doc *Document) error {
	count := 0
	sum := decimal.Zero
	for _, block := range doc.CstmrDrctDbtInitn.PmtInf {
		if block.NbOfTxs != len(block.DrctDbtTxInf) {
			return fmt.Errorf("payment block %s declares %d transactions but carries %d",
				block.PmtInfId, block.NbOfTxs, len(block.DrctDbtTxInf))
		}
		blockSum := decimal.Zero
		for _, tx := range block.DrctDbtTxInf {
			amount, err := decimal.NewFromString(tx.InstdAmt.Value)
			if err != nil {
				return fmt.Errorf("transaction %s has unparseable amount %q", tx.PmtId.EndToEndId, tx.InstdAmt.Value)
			}
			blockSum = blockSum.Add(amount)
		}
		if block.CtrlSum != blockSum.StringFixed(2) {
			return fmt.Errorf("payment block %s control sum %s does not match its transactions (%s)",
				block.PmtInfId, block.CtrlSum, blockSum.StringFixed(2))
		}
		count += block.NbOfTxs
		sum = sum.Add(blockSum)
	}

	header := doc.CstmrDrctDbtInitn.GrpHdr
	if header.NbOfTxs != count || header.CtrlSum != sum.StringFixed(2) {
		return fmt.Errorf("header declares %d transactions / %s but blocks add up to %d / %s",
			header.NbOfTxs, header.CtrlSum, count, sum.StringFixed(2))
	}
	return nil
}

func endToEndID(itemID string) string {
	return endToEndPrefix + "-" + truncate(itemID, maxItemIDLen)
}

// debtorAgent falls back to NOTPROVIDED when the BIC is unknown; the bank
// derives the agent from the IBAN in that case.
func debtorAgent(bic string) Agt {
	if bic == "" {
		return Agt{FinInstnId: FinInstnId{Othr: &Othr{Id: "NOTPROVIDED"}}}
	}
	return Agt{FinInstnId: FinInstnId{BIC: bic}}
}

func debtorParty(d *Debtor) Pty {
	p := Pty{Nm: d.Name}
	if d.TaxID != "" {
		p.Id = &PtyId{PrvtId: PrvtId{Othr: Othr{Id: d.TaxID}}}
	}
	return p
}

// remittanceText builds the human-readable description shown on the debtor's
// statement: the item's own description, else service name and billing
// period, else a generic reference to the collection id.
func remittanceText(item CollectionItem) string {
	text := item.Description
	if text == "" && item.ServiceName != "" {
		text = item.ServiceName
		if item.Period != "" {
			text += " " + item.Period
		}
	}
	if text == "" {
		text = "Collection " + item.ID
	}
	return truncate(text, maxRemittanceLen)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
