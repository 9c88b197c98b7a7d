package sepa

import (
	"sort"
	"time"
)

// GroupTransactions partitions transactions into payment blocks: first by
// calendar collection date, then by sequence type, because the scheme forbids
// mixing sequence types inside one block. Blocks come out ordered by ascending
// collection date, FRST before RCUR within a date; transaction order inside a
// block follows the input order. Empty blocks are never produced.
func GroupTransactions(txns []DirectDebitTransaction) []PaymentGroup {
	type blockKey struct {
		date string
		seq  SequenceType
	}

	blocks := make(map[blockKey]*PaymentGroup)
	var order []blockKey

	for _, tx := range txns {
		k := blockKey{date: tx.Item.DueDate.Format("2006-01-02"), seq: tx.Sequence}
		g, ok := blocks[k]
		if !ok {
			g = &PaymentGroup{
				CollectionDate: collectionDay(tx.Item.DueDate),
				Sequence:       tx.Sequence,
			}
			blocks[k] = g
			order = append(order, k)
		}
		g.Transactions = append(g.Transactions, tx)
	}

	groups := make([]PaymentGroup, 0, len(order))
	for _, k := range order {
		groups = append(groups, *blocks[k])
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if !groups[i].CollectionDate.Equal(groups[j].CollectionDate) {
			return groups[i].CollectionDate.Before(groups[j].CollectionDate)
		}
		return sequenceRank(groups[i].Sequence) < sequenceRank(groups[j].Sequence)
	})

	return groups
}

// collectionDay truncates a due date to the calendar date; the time of day
// never influences which block an item lands in.
func collectionDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sequenceRank(s SequenceType) int {
	switch s {
	case SequenceFirst:
		return 0
	case SequenceRecurring:
		return 1
	case SequenceOneOff:
		return 2
	case SequenceFinal:
		return 3
	default:
		return 4
	}
}
