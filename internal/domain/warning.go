package domain

import "fmt"

// WarningCode classifies a non-fatal condition met during a run.
type WarningCode string

// Warning codes.
const (
	// WarnNoCandidateKey: no attribute set identifies every row, usually
	// because the input holds duplicate rows.
	WarnNoCandidateKey WarningCode = "no_candidate_key"
	// WarnConsistencyFault: sanitized names could not be mapped back to
	// source columns; the relation was kept undecomposed.
	WarnConsistencyFault WarningCode = "consistency_fault"
	// WarnKeySearchLimited: the heading exceeded the configured key search
	// bound.
	WarnKeySearchLimited WarningCode = "key_search_limited"
)

// Warning is a structured diagnostic. Warnings never abort a run.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// NewWarning creates a Warning with a formatted message.
func NewWarning(code WarningCode, format string, args ...any) Warning {
	return Warning{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (w Warning) String() string { return string(w.Code) + ": " + w.Message }
