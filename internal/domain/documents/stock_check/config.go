package stock_check

import "stockyard/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Stock checks are infrequent, strict numbering keeps the sequence gapless.
	NumeratorStrategy = numerator.StrategyStrict
)
