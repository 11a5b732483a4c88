package exchange_note

import "stockyard/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Exchange notes are primary stock documents, so numbering is gapless.
	NumeratorStrategy = numerator.StrategyStrict
)
