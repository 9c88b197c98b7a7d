package sepa

import (
	"fmt"
	"time"
)

// ExportFile is a finished remittance document ready to hand to the caller
// as a named download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Export serializes the document into a named file; the name embeds the
// generation date.
func Export(doc *Document, generatedAt time.Time) (*ExportFile, error) {
	data, err := doc.Encode()
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Name:        fmt.Sprintf("remittance-%s.xml", generatedAt.Format("20060102")),
		ContentType: "application/xml",
		Data:        data,
	}, nil
}

// Generator runs the full remittance pipeline: validate, resolve, group,
// build, export. Each call is independent; no input is mutated.
type Generator struct {
	Builder *Builder
}

// NewGenerator returns a generator with the default builder.
func NewGenerator() *Generator {
	return &Generator{Builder: NewBuilder()}
}

// Result distinguishes a rejected batch from a produced file. Problems is
// non-empty when validation failed; File and Document are set otherwise.
type Result struct {
	File     *ExportFile
	Document *Document
	Problems []string
}

// Generate produces the remittance file for the given items. prior maps
// Debtor.Ref to the number of collections successfully paid before this run;
// debtors absent from the map are first-time. Validation problems come back
// as values inside Result, because they are the expected, user-correctable
// outcome; a non-nil error means a pipeline precondition was bypassed and no
// file was produced.
func (g *Generator) Generate(creditor CreditorData, items []CollectionItem, prior map[string]int) (*Result, error) {
	if problems := ValidateBatch(creditor, items); len(problems) > 0 {
		return &Result{Problems: problems}, nil
	}

	txns := make([]DirectDebitTransaction, 0, len(items))
	for _, item := range items {
		txns = append(txns, DirectDebitTransaction{
			Item:     item,
			Sequence: ResolveSequence(prior[item.Debtor.Ref]),
		})
	}

	doc, err := g.Builder.Build(GroupTransactions(txns), creditor)
	if err != nil {
		return nil, err
	}

	file, err := Export(doc, g.Builder.Now())
	if err != nil {
		return nil, err
	}
	return &Result{File: file, Document: doc}, nil
}
