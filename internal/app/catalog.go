package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/streamplan/internal/catalog"
	"github.com/Guilhem-Bonnet/streamplan/internal/ports"
)

// LoadCatalog lit la source et construit le catalogue. Une IntegrityError
// est renvoyée telle quelle: l'appelant doit arrêter le processus.
func LoadCatalog(ctx context.Context, src ports.CatalogSource, logger zerolog.Logger) (*catalog.Catalog, error) {
	data, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	cat, err := catalog.Build(data)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("packages", len(data.Packages)).
		Int("games", len(data.Games)).
		Int("offers", len(data.Offers)).
		Uint("offset", cat.Offset()).
		Str("fingerprint", cat.Fingerprint()).
		Msg("catalog loaded")
	return cat, nil
}

// SyncCatalog copie le contenu de src dans dst (import CSV vers SQL).
func SyncCatalog(ctx context.Context, src ports.CatalogSource, dst ports.CatalogStore, logger zerolog.Logger) error {
	data, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	// On valide avant d'écrire pour ne jamais persister un catalogue incohérent.
	if _, err := catalog.Build(data); err != nil {
		return err
	}
	if err := dst.Import(ctx, data); err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}
	logger.Info().Int("packages", len(data.Packages)).Int("games", len(data.Games)).Msg("catalog imported")
	return nil
}
