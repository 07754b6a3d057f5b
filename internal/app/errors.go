package app

import (
	"github.com/Guilhem-Bonnet/streamplan/internal/ports"
)

var ErrNotFound = ports.ErrNotFound

// Codes stables renvoyés aux clients dans le champ "code".
const (
	CodeInfeasible     = "infeasible"
	CodeBudgetExceeded = "search_budget_exceeded"
)

// CodedError associe un code stable à un échec de planification.
// Err reste accessible via errors.Is / errors.As.
type CodedError struct {
	Code    string
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *CodedError) Unwrap() error { return e.Err }
