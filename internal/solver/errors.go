package solver

import (
	"errors"
	"fmt"

	"github.com/Guilhem-Bonnet/streamplan/internal/ports"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInfeasible: aucune combinaison de packages éligibles ne couvre les items requis.
	ErrInfeasible = errors.New("no covering combination")
	// ErrBudgetExceeded: la recherche a dépassé son budget (expansions ou délai).
	ErrBudgetExceeded = errors.New("search budget exceeded")
)

// NotFoundError nomme la référence inconnue (équipe, compétition, match).
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ports.ErrNotFound
}
