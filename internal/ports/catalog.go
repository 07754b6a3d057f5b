package ports

//go:generate mockgen -source=catalog.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
)

// CatalogSource fournit les enregistrements bruts du catalogue. Lu une seule
// fois au démarrage.
type CatalogSource interface {
	Load(ctx context.Context) (domain.CatalogData, error)
}

// CatalogStore remplace le contenu persistant du catalogue.
type CatalogStore interface {
	Import(ctx context.Context, data domain.CatalogData) error
}
