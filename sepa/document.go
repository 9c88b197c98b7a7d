package sepa

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const painNamespace = "urn:iso:std:iso:20022:tech:xsd:pain.008.001.02"

// Document is the root of a pain.008.001.02 customer direct debit initiation.
// Struct and field names follow the ISO 20022 short element names, so the
// serialized output matches the schema tag for tag. encoding/xml escapes the
// XML metacharacters in every text field during marshalling.
type Document struct {
	XMLName           xml.Name          `xml:"Document"`
	Xmlns             string            `xml:"xmlns,attr"`
	CstmrDrctDbtInitn CstmrDrctDbtInitn `xml:"CstmrDrctDbtInitn"`
}

// CstmrDrctDbtInitn holds the group header and the payment blocks.
type CstmrDrctDbtInitn struct {
	GrpHdr GrpHdr   `xml:"GrpHdr"`
	PmtInf []PmtInf `xml:"PmtInf"`
}

// GrpHdr is the message header. NbOfTxs and CtrlSum cover every transaction
// in every payment block.
type GrpHdr struct {
	MsgId    string `xml:"MsgId"`
	CreDtTm  string `xml:"CreDtTm"`
	NbOfTxs  int    `xml:"NbOfTxs"`
	CtrlSum  string `xml:"CtrlSum"`
	InitgPty Pty    `xml:"InitgPty"`
}

// Pty is a party: a name, an identification, or both.
type Pty struct {
	Nm string `xml:"Nm,omitempty"`
	Id *PtyId `xml:"Id,omitempty"`
}

type PtyId struct {
	PrvtId PrvtId `xml:"PrvtId"`
}

type PrvtId struct {
	Othr Othr `xml:"Othr"`
}

type Othr struct {
	Id      string   `xml:"Id"`
	SchmeNm *SchmeNm `xml:"SchmeNm,omitempty"`
}

type SchmeNm struct {
	Prtry string `xml:"Prtry"`
}

// PmtInf is one payment block: one requested collection date, one sequence
// type, the creditor stated once, and the block's own transaction count and
// control sum.
type PmtInf struct {
	PmtInfId     string         `xml:"PmtInfId"`
	PmtMtd       string         `xml:"PmtMtd"`
	BtchBookg    bool           `xml:"BtchBookg"`
	NbOfTxs      int            `xml:"NbOfTxs"`
	CtrlSum      string         `xml:"CtrlSum"`
	PmtTpInf     PmtTpInf       `xml:"PmtTpInf"`
	ReqdColltnDt string         `xml:"ReqdColltnDt"`
	Cdtr         Pty            `xml:"Cdtr"`
	CdtrAcct     Acct           `xml:"CdtrAcct"`
	CdtrAgt      *Agt           `xml:"CdtrAgt,omitempty"`
	ChrgBr       string         `xml:"ChrgBr"`
	CdtrSchmeId  Pty            `xml:"CdtrSchmeId"`
	DrctDbtTxInf []DrctDbtTxInf `xml:"DrctDbtTxInf"`
}

type PmtTpInf struct {
	SvcLvl    CdWrap       `xml:"SvcLvl"`
	LclInstrm CdWrap       `xml:"LclInstrm"`
	SeqTp     SequenceType `xml:"SeqTp"`
}

type CdWrap struct {
	Cd string `xml:"Cd"`
}

type Acct struct {
	Id AcctId `xml:"Id"`
}

type AcctId struct {
	IBAN string `xml:"IBAN"`
}

type Agt struct {
	FinInstnId FinInstnId `xml:"FinInstnId"`
}

type FinInstnId struct {
	BIC  string `xml:"BIC,omitempty"`
	Othr *Othr  `xml:"Othr,omitempty"`
}

// DrctDbtTxInf is a single transaction record inside a payment block.
type DrctDbtTxInf struct {
	PmtId     PmtId     `xml:"PmtId"`
	InstdAmt  Amt       `xml:"InstdAmt"`
	DrctDbtTx DrctDbtTx `xml:"DrctDbtTx"`
	DbtrAgt   Agt       `xml:"DbtrAgt"`
	Dbtr      Pty       `xml:"Dbtr"`
	DbtrAcct  Acct      `xml:"DbtrAcct"`
	RmtInf    *RmtInf   `xml:"RmtInf,omitempty"`
}

type PmtId struct {
	EndToEndId string `xml:"EndToEndId"`
}

type Amt struct {
	Value string `xml:",chardata"`
	Ccy   string `xml:"Ccy,attr"`
}

type DrctDbtTx struct {
	MndtRltdInf MndtRltdInf `xml:"MndtRltdInf"`
}

type MndtRltdInf struct {
	MndtId    string `xml:"MndtId"`
	DtOfSgntr string `xml:"DtOfSgntr"`
}

type RmtInf struct {
	Ustrd string `xml:"Ustrd"`
}

// Encode serializes the document with an XML declaration and two-space indent.
func (d *Document) Encode() ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling pain.008 document: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
