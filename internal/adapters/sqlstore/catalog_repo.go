package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
)

// insertBatch reste sous la limite de variables de SQLite.
const insertBatch = 200

type gameRow struct {
	ID             int64  `db:"id"`
	TeamHome       string `db:"team_home"`
	TeamAway       string `db:"team_away"`
	StartsAt       string `db:"starts_at"`
	TournamentName string `db:"tournament_name"`
}

type packageRow struct {
	ID      int64         `db:"id"`
	Name    string        `db:"name"`
	Monthly sql.NullInt64 `db:"monthly_price_cents"`
	Yearly  sql.NullInt64 `db:"yearly_monthly_price_cents"`
}

type offerRow struct {
	GameID     int64 `db:"game_id"`
	PackageID  int64 `db:"package_id"`
	Live       int64 `db:"live"`
	Highlights int64 `db:"highlights"`
}

// CatalogRepository lit et remplace le catalogue persistant.
type CatalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) Load(ctx context.Context) (domain.CatalogData, error) {
	var (
		games    []gameRow
		packages []packageRow
		offers   []offerRow
	)
	queries := []struct {
		dest  any
		query sq.SelectBuilder
	}{
		{&games, r.db.Builder.Select("id", "team_home", "team_away", "starts_at", "tournament_name").From("games").OrderBy("id")},
		{&packages, r.db.Builder.Select("id", "name", "monthly_price_cents", "yearly_monthly_price_cents").From("packages").OrderBy("id")},
		{&offers, r.db.Builder.Select("game_id", "package_id", "live", "highlights").From("offers").OrderBy("game_id", "package_id")},
	}
	for _, q := range queries {
		query, args, err := q.query.ToSql()
		if err != nil {
			return domain.CatalogData{}, err
		}
		if err := r.db.SQL.SelectContext(ctx, q.dest, query, args...); err != nil {
			return domain.CatalogData{}, fmt.Errorf("load catalog: %w", err)
		}
	}

	data := domain.CatalogData{
		Games:    make([]domain.Game, 0, len(games)),
		Packages: make([]domain.Package, 0, len(packages)),
		Offers:   make([]domain.Offer, 0, len(offers)),
	}
	for _, g := range games {
		data.Games = append(data.Games, domain.Game{
			ID:             uint(g.ID),
			TeamHome:       g.TeamHome,
			TeamAway:       g.TeamAway,
			StartsAt:       g.StartsAt,
			TournamentName: g.TournamentName,
		})
	}
	for _, p := range packages {
		data.Packages = append(data.Packages, domain.Package{
			ID:                      uint(p.ID),
			Name:                    p.Name,
			MonthlyPriceCents:       nullableCents(p.Monthly),
			YearlyMonthlyPriceCents: nullableCents(p.Yearly),
		})
	}
	for _, o := range offers {
		data.Offers = append(data.Offers, domain.Offer{
			GameID:     uint(o.GameID),
			PackageID:  uint(o.PackageID),
			Live:       o.Live != 0,
			Highlights: o.Highlights != 0,
		})
	}
	return data, nil
}

// Import remplace tout le catalogue dans une seule transaction. Les offres
// en double (même match, même package) sont fusionnées.
func (r *CatalogRepository) Import(ctx context.Context, data domain.CatalogData) error {
	tx, err := r.db.SQL.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := r.importTx(ctx, tx, data); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *CatalogRepository) importTx(ctx context.Context, tx *sqlx.Tx, data domain.CatalogData) error {
	for _, table := range []string{"offers", "packages", "games"} {
		query, args, err := r.db.Builder.Delete(table).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	gameValues := make([][]any, 0, len(data.Games))
	for _, g := range data.Games {
		gameValues = append(gameValues, []any{int64(g.ID), g.TeamHome, g.TeamAway, g.StartsAt, g.TournamentName})
	}
	if err := r.insertAll(ctx, tx, "games", []string{"id", "team_home", "team_away", "starts_at", "tournament_name"}, gameValues); err != nil {
		return err
	}

	packageValues := make([][]any, 0, len(data.Packages))
	for _, p := range data.Packages {
		packageValues = append(packageValues, []any{int64(p.ID), p.Name, centsValue(p.MonthlyPriceCents), centsValue(p.YearlyMonthlyPriceCents)})
	}
	if err := r.insertAll(ctx, tx, "packages", []string{"id", "name", "monthly_price_cents", "yearly_monthly_price_cents"}, packageValues); err != nil {
		return err
	}

	return r.insertAll(ctx, tx, "offers", []string{"game_id", "package_id", "live", "highlights"}, offerValues(data.Offers))
}

func (r *CatalogRepository) insertAll(ctx context.Context, tx *sqlx.Tx, table string, columns []string, rows [][]any) error {
	for start := 0; start < len(rows); start += insertBatch {
		end := min(start+insertBatch, len(rows))
		b := r.db.Builder.Insert(table).Columns(columns...)
		for _, row := range rows[start:end] {
			b = b.Values(row...)
		}
		query, args, err := b.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

func offerValues(offers []domain.Offer) [][]any {
	type key struct{ game, pkg uint }
	merged := map[key]domain.Offer{}
	for _, o := range offers {
		k := key{o.GameID, o.PackageID}
		m, ok := merged[k]
		if !ok {
			m = domain.Offer{GameID: o.GameID, PackageID: o.PackageID}
		}
		m.Live = m.Live || o.Live
		m.Highlights = m.Highlights || o.Highlights
		merged[k] = m
	}

	out := make([][]any, 0, len(merged))
	for _, o := range merged {
		out = append(out, []any{int64(o.GameID), int64(o.PackageID), boolInt(o.Live), boolInt(o.Highlights)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0].(int64) != out[j][0].(int64) {
			return out[i][0].(int64) < out[j][0].(int64)
		}
		return out[i][1].(int64) < out[j][1].(int64)
	})
	return out
}

func nullableCents(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return domain.Cents(v.Int64)
}

func centsValue(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
