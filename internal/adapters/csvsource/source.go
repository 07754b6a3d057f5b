// Package csvsource lit le catalogue depuis les trois fichiers plats
// bc_game.csv, bc_streaming_package.csv et bc_streaming_offer.csv.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
)

const (
	GamesFile    = "bc_game.csv"
	PackagesFile = "bc_streaming_package.csv"
	OffersFile   = "bc_streaming_offer.csv"
)

type Source struct {
	dir string
}

func New(dir string) *Source {
	return &Source{dir: dir}
}

func (s *Source) Load(ctx context.Context) (domain.CatalogData, error) {
	var data domain.CatalogData

	err := s.readFile(ctx, GamesFile, []string{"id", "team_home", "team_away", "starts_at", "tournament_name"}, func(r record) error {
		id, err := r.uint("id")
		if err != nil {
			return err
		}
		data.Games = append(data.Games, domain.Game{
			ID:             id,
			TeamHome:       r.str("team_home"),
			TeamAway:       r.str("team_away"),
			StartsAt:       r.str("starts_at"),
			TournamentName: r.str("tournament_name"),
		})
		return nil
	})
	if err != nil {
		return domain.CatalogData{}, err
	}

	err = s.readFile(ctx, PackagesFile, []string{"id", "name", "monthly_price_cents", "monthly_price_yearly_subscription_in_cents"}, func(r record) error {
		id, err := r.uint("id")
		if err != nil {
			return err
		}
		monthly, err := r.optionalInt("monthly_price_cents")
		if err != nil {
			return err
		}
		yearly, err := r.optionalInt("monthly_price_yearly_subscription_in_cents")
		if err != nil {
			return err
		}
		data.Packages = append(data.Packages, domain.Package{
			ID:                      id,
			Name:                    r.str("name"),
			MonthlyPriceCents:       monthly,
			YearlyMonthlyPriceCents: yearly,
		})
		return nil
	})
	if err != nil {
		return domain.CatalogData{}, err
	}

	err = s.readFile(ctx, OffersFile, []string{"game_id", "streaming_package_id", "live", "highlights"}, func(r record) error {
		gameID, err := r.uint("game_id")
		if err != nil {
			return err
		}
		packageID, err := r.uint("streaming_package_id")
		if err != nil {
			return err
		}
		live, err := r.flag("live")
		if err != nil {
			return err
		}
		highlights, err := r.flag("highlights")
		if err != nil {
			return err
		}
		data.Offers = append(data.Offers, domain.Offer{GameID: gameID, PackageID: packageID, Live: live, Highlights: highlights})
		return nil
	})
	if err != nil {
		return domain.CatalogData{}, err
	}

	return data, nil
}

// readFile repère les colonnes par leur nom dans l'en-tête; les colonnes
// inconnues sont ignorées.
func (s *Source) readFile(ctx context.Context, name string, columns []string, fn func(record) error) error {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.ReuseRecord = true
	rd.FieldsPerRecord = -1

	header, err := rd.Read()
	if err != nil {
		return fmt.Errorf("%s: read header: %w", name, err)
	}
	index := map[string]int{}
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range columns {
		if _, ok := index[c]; !ok {
			return fmt.Errorf("%s: missing column %q", name, c)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fields, err := rd.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		line, _ := rd.FieldPos(0)
		if err := fn(record{fields: fields, index: index}); err != nil {
			return fmt.Errorf("%s:%d: %w", name, line, err)
		}
	}
}

type record struct {
	fields []string
	index  map[string]int
}

func (r record) str(col string) string {
	i := r.index[col]
	if i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r record) uint(col string) (uint, error) {
	v, err := strconv.ParseUint(r.str(col), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return uint(v), nil
}

// optionalInt: cellule vide = valeur absente.
func (r record) optionalInt(col string) (*int64, error) {
	raw := r.str(col)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", col, err)
	}
	return &v, nil
}

func (r record) flag(col string) (bool, error) {
	switch r.str(col) {
	case "1", "true", "TRUE":
		return true, nil
	case "0", "false", "FALSE", "":
		return false, nil
	default:
		return false, fmt.Errorf("column %s: invalid flag %q", col, r.str(col))
	}
}
