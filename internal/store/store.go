// Package store is the Postgres data access layer for parks and their term assignments.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"parks-geojson/internal/logger"
	"parks-geojson/internal/park"
	"parks-geojson/internal/taxonomy"
)

// ErrNoGlobalID is returned by Upsert for a park without an identifier.
var ErrNoGlobalID = errors.New("store: park has no global id")

// Repository is the persistence contract used by the import pipeline and the renderer.
type Repository interface {
	FindByGlobalID(ctx context.Context, globalID string) (int64, bool, error)
	Upsert(ctx context.Context, p park.Park) (int64, error)
	TermsOf(ctx context.Context, recordID int64, c taxonomy.Category) ([]string, error)
	Load(ctx context.Context, globalID string) (*park.Park, error)
	Stats(ctx context.Context) (*Stats, error)
}

// Stats counts stored parks.
type Stats struct {
	Parks        int64 `json:"parks"`
	UpdatedToday int64 `json:"updated_today"`
}

// Store holds the connection pool and the vocabulary used to filter terms on write.
type Store struct {
	db  *sql.DB
	tax *taxonomy.Table
}

var _ Repository = (*Store)(nil)

func AttachDB(db *sql.DB, tax *taxonomy.Table) *Store { return &Store{db: db, tax: tax} }

// FindByGlobalID returns the record id of a park; ok is false on a miss.
func (s *Store) FindByGlobalID(ctx context.Context, globalID string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM parks WHERE global_id=$1 LIMIT 1", globalID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

const upsertPark = `INSERT INTO parks(global_id, title, name, address, park_type, size, url, geometry)
	VALUES($1,$2,$3,$4,$5,$6,$7,$8::jsonb)
	ON CONFLICT (global_id) DO UPDATE SET title=EXCLUDED.title, name=EXCLUDED.name, address=EXCLUDED.address,
		park_type=EXCLUDED.park_type, size=EXCLUDED.size, url=EXCLUDED.url, geometry=EXCLUDED.geometry, updated_at=now()
	RETURNING id`

// Upsert creates or updates the park keyed by its global id and replaces its
// term assignments with the allowed subset of its amenities and activities.
// The record row and its terms are written in one transaction.
func (s *Store) Upsert(ctx context.Context, p park.Park) (int64, error) {
	if p.GlobalID == "" {
		return 0, ErrNoGlobalID
	}
	geom, err := json.Marshal(p.Geometry)
	if err != nil {
		return 0, fmt.Errorf("encode geometry: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, upsertPark,
		p.GlobalID, p.Info.Name, p.Info.Name, p.Info.Address, p.Info.Type, p.Info.Size, p.Info.URL, string(geom),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert park %s: %w", p.GlobalID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM park_terms WHERE park_id=$1", id); err != nil {
		return 0, fmt.Errorf("clear terms %s: %w", p.GlobalID, err)
	}
	for _, c := range taxonomy.Categories {
		for pos, slug := range s.tax.FilterAllowed(termsOf(p, c), c) {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO park_terms(park_id, category, slug, position) VALUES($1,$2,$3,$4)",
				id, string(c), slug, pos,
			); err != nil {
				return 0, fmt.Errorf("assign term %s/%s: %w", c, slug, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	logger.L().Debug().Str("global_id", p.GlobalID).Int64("id", id).Msg("park_upserted")
	return id, nil
}

// TermsOf returns the slugs assigned to a record in assignment order.
func (s *Store) TermsOf(ctx context.Context, recordID int64, c taxonomy.Category) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT slug FROM park_terms WHERE park_id=$1 AND category=$2 ORDER BY position", recordID, string(c))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		out = append(out, slug)
	}
	return out, rows.Err()
}

// Load rebuilds a stored park, or returns (nil, nil) when none exists.
func (s *Store) Load(ctx context.Context, globalID string) (*park.Park, error) {
	var (
		id  int64
		rec = park.Stored{GlobalID: globalID}
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, name, address, park_type, size, url, geometry FROM parks WHERE global_id=$1",
		globalID,
	).Scan(&id, &rec.Title, &rec.Info.Name, &rec.Info.Address, &rec.Info.Type, &rec.Info.Size, &rec.Info.URL, &rec.Geometry)
	if errors.Is(err, sql.ErrNoRows) {
		logger.L().Debug().Str("global_id", globalID).Msg("park_load_miss")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if rec.Amenities, err = s.TermsOf(ctx, id, taxonomy.Amenities); err != nil {
		return nil, err
	}
	if rec.Activities, err = s.TermsOf(ctx, id, taxonomy.Activities); err != nil {
		return nil, err
	}
	p := park.FromStored(rec)
	return &p, nil
}

// Stats counts all parks and those written since midnight (database time).
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1), COUNT(1) FILTER (WHERE updated_at >= current_date) FROM parks",
	).Scan(&st.Parks, &st.UpdatedToday)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func termsOf(p park.Park, c taxonomy.Category) []string {
	switch c {
	case taxonomy.Amenities:
		return p.Amenities
	case taxonomy.Activities:
		return p.Activities
	}
	return nil
}
