package executor

import "github.com/tanaylab/daf/phrase"

// buildTable assembles the ordered, first-match-wins phrase table (§4.3).
// Each phrase keys off a distinct leading operation type, so match order
// rarely changes behavior; phrases are still grouped in the order §4.4
// introduces them for readability.
func (ex *Executor) buildTable() []phrase.Phrase {
	return []phrase.Phrase{
		ex.axisPhrase(),
		ex.namesPhrase(),
		ex.scalarLookupPhrase(),
		ex.beginMaskPhrase(),
		ex.maskOperationPhrase(),
		ex.endMaskPhrase(),
		ex.chainPhrase(),
		ex.countByPhrase(),
		ex.groupByPhrase(),
		ex.groupMatrixPhrase(),
		ex.lookupMatrixPhrase(),
		ex.reduceMatrixPhrase(),
		ex.squareColumnPhrase(),
		ex.squareRowPhrase(),
		ex.comparisonPhrase(),
		ex.eltwisePhrase(),
		ex.scalarReductionPhrase(),
	}
}
