package domain

// Outcome is how a normalization run ended.
type Outcome string

const (
	// OutcomeEmpty means the input had no rows.
	OutcomeEmpty Outcome = "empty"
	// OutcomeUnchanged means the relation was already in second normal form.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeDecomposed means a details and a main relation were produced.
	OutcomeDecomposed Outcome = "decomposed"
	// OutcomeFallback means the relation was returned without keys.
	OutcomeFallback Outcome = "fallback"
)
