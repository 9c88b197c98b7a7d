// Package sepa generates SEPA Core direct debit remittance files
// (ISO 20022 pain.008) from billed collection items.
//
// The pipeline is pure and synchronous: validate the batch, resolve each
// debtor's sequence type, group transactions into payment blocks, build the
// document tree, serialize. All data (creditor profile, prior-collection
// counts) is resolved by the caller beforehand and passed in as values.
package sepa

import (
	"time"

	"github.com/shopspring/decimal"
)

// SequenceType is the pain.008 sequence code of a direct debit transaction.
type SequenceType string

const (
	SequenceFirst     SequenceType = "FRST"
	SequenceRecurring SequenceType = "RCUR"
	SequenceOneOff    SequenceType = "OOFF"
	SequenceFinal     SequenceType = "FNAL"
)

// ChannelDirectDebit is the only payment channel eligible for remittance.
const ChannelDirectDebit = "direct_debit"

// Mandate is a debtor's signed authorization permitting the creditor to
// collect from their account.
type Mandate struct {
	Reference     string // unique per debtor/creditor pair
	SignatureDate time.Time
}

// Debtor is the counterpart a collection is pulled from.
type Debtor struct {
	Ref     string // stable key, used to look up prior collections
	Name    string
	TaxID   string
	IBAN    string
	BIC     string
	Mandate *Mandate
}

// CollectionItem is a single amount due from a debtor. Items are produced by
// the billing layer and consumed read-only here.
type CollectionItem struct {
	ID          string
	Amount      decimal.Decimal
	DueDate     time.Time // requested collection date
	Description string
	Channel     string
	ServiceName string // used for remittance text when Description is empty
	Period      string
	Debtor      *Debtor
}

// CreditorData identifies the entity initiating the collection.
type CreditorData struct {
	Name     string
	IBAN     string
	BIC      string
	SchemeID string // creditor scheme identifier assigned by the clearing scheme
}

// DirectDebitTransaction pairs a collection item with its resolved sequence
// type. It only exists between grouping and serialization.
type DirectDebitTransaction struct {
	Item     CollectionItem
	Sequence SequenceType
}

// PaymentGroup is one structural payment block of the output document: every
// transaction in it shares the collection date and the sequence type.
type PaymentGroup struct {
	CollectionDate time.Time
	Sequence       SequenceType
	Transactions   []DirectDebitTransaction
}

// ResolveSequence classifies a collection by the debtor's history strictly
// before the current run: a debtor with no successfully collected direct
// debits is FRST, any prior success makes it RCUR. The count is a read-only
// snapshot computed by the caller once, so a debtor with several new items in
// the same run gets the same classification for all of them.
func ResolveSequence(priorCollections int) SequenceType {
	if priorCollections == 0 {
		return SequenceFirst
	}
	return SequenceRecurring
}
