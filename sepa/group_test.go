package sepa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSequence(t *testing.T) {
	assert.Equal(t, SequenceFirst, ResolveSequence(0))
	assert.Equal(t, SequenceRecurring, ResolveSequence(1))
	assert.Equal(t, SequenceRecurring, ResolveSequence(37))
}

func TestGroupTransactions_ByDateAndSequence(t *testing.T) {
	mar01 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mar10 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	alice := testDebtor("c1", "Alice")
	bob := testDebtor("c2", "Bob")

	txns := []DirectDebitTransaction{
		{Item: testItem("INV-3", "20.00", mar10, alice), Sequence: SequenceFirst},
		{Item: testItem("INV-1", "12.50", mar01, alice), Sequence: SequenceFirst},
		{Item: testItem("INV-2", "30.00", mar01, bob), Sequence: SequenceRecurring},
		{Item: testItem("INV-4", "7.50", mar01, alice), Sequence: SequenceFirst},
	}

	groups := GroupTransactions(txns)
	require.Len(t, groups, 3)

	// Ascending date, FRST before RCUR within a date.
	assert.Equal(t, mar01, groups[0].CollectionDate)
	assert.Equal(t, SequenceFirst, groups[0].Sequence)
	assert.Equal(t, mar01, groups[1].CollectionDate)
	assert.Equal(t, SequenceRecurring, groups[1].Sequence)
	assert.Equal(t, mar10, groups[2].CollectionDate)
	assert.Equal(t, SequenceFirst, groups[2].Sequence)

	// Stable input order inside a block.
	require.Len(t, groups[0].Transactions, 2)
	assert.Equal(t, "INV-1", groups[0].Transactions[0].Item.ID)
	assert.Equal(t, "INV-4", groups[0].Transactions[1].Item.ID)

	// No block mixes sequence types.
	for _, g := range groups {
		for _, tx := range g.Transactions {
			assert.Equal(t, g.Sequence, tx.Sequence)
		}
	}
}

func TestGroupTransactions_TimeOfDayIgnored(t *testing.T) {
	morning := time.Date(2025, 3, 1, 8, 15, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 1, 22, 45, 0, 0, time.UTC)
	alice := testDebtor("c1", "Alice")

	groups := GroupTransactions([]DirectDebitTransaction{
		{Item: testItem("INV-1", "12.50", morning, alice), Sequence: SequenceFirst},
		{Item: testItem("INV-2", "30.00", evening, alice), Sequence: SequenceFirst},
	})

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Transactions, 2)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), groups[0].CollectionDate)
}

func TestGroupTransactions_Empty(t *testing.T) {
	assert.Empty(t, GroupTransactions(nil))
}
