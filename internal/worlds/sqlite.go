package worlds

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/holoverse/presence/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS worlds (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	theme            TEXT NOT NULL DEFAULT '',
	is_public        INTEGER NOT NULL DEFAULT 1,
	price_cents      INTEGER NOT NULL DEFAULT 0,
	max_participants INTEGER NOT NULL,
	creator_id       TEXT NOT NULL,
	moderator_ids    TEXT NOT NULL DEFAULT '[]'
);`

// SQLiteRegistry reads the world catalog from the shared sqlite file the
// authoring tools write to.
type SQLiteRegistry struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteRegistry, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open worlds db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure worlds schema: %w", err)
	}
	return &SQLiteRegistry{db: db}, nil
}

func (r *SQLiteRegistry) Close() error { return r.db.Close() }

func (r *SQLiteRegistry) Get(ctx context.Context, id domain.WorldID) (*domain.World, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, theme, is_public, price_cents, max_participants, creator_id, moderator_ids
		FROM worlds WHERE id = ?`, string(id))

	var (
		w          domain.World
		isPublic   int
		moderators string
	)
	err := row.Scan(&w.ID, &w.Name, &w.Theme, &isPublic, &w.PriceCents, &w.MaxParticipants, &w.CreatorID, &moderators)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read world %s: %w", id, err)
	}
	w.IsPublic = isPublic != 0

	var ids []domain.UserID
	if err := json.Unmarshal([]byte(moderators), &ids); err != nil {
		return nil, fmt.Errorf("decode moderators for %s: %w", id, err)
	}
	if len(ids) > 0 {
		w.ModeratorIDs = make(map[domain.UserID]struct{}, len(ids))
		for _, mid := range ids {
			w.ModeratorIDs[mid] = struct{}{}
		}
	}
	return &w, nil
}

// Upsert writes one catalog row. Serving paths never call this; it exists
// for seeding and tests.
func (r *SQLiteRegistry) Upsert(ctx context.Context, w domain.World) error {
	if err := w.Validate(); err != nil {
		return err
	}
	ids := make([]domain.UserID, 0, len(w.ModeratorIDs))
	for id := range w.ModeratorIDs {
		ids = append(ids, id)
	}
	moderators, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode moderators: %w", err)
	}

	isPublic := 0
	if w.IsPublic {
		isPublic = 1
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO worlds (id, name, theme, is_public, price_cents, max_participants, creator_id, moderator_ids)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			theme = excluded.theme,
			is_public = excluded.is_public,
			price_cents = excluded.price_cents,
			max_participants = excluded.max_participants,
			creator_id = excluded.creator_id,
			moderator_ids = excluded.moderator_ids`,
		string(w.ID), string(w.Name), w.Theme, isPublic, w.PriceCents, w.MaxParticipants, string(w.CreatorID), string(moderators))
	if err != nil {
		return fmt.Errorf("upsert world %s: %w", w.ID, err)
	}
	return nil
}
