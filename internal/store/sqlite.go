package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/competitor-intel/internal/model"
)

// SQLiteStore implements Store over a local SQLite file. It carries its own
// schema and a Seed method so a development copy of the sponsorship data can
// be loaded from fixtures.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS brands (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	website          TEXT,
	description      TEXT,
	primary_category TEXT
);

CREATE TABLE IF NOT EXISTS creators (
	id              TEXT PRIMARY KEY,
	display_name    TEXT NOT NULL,
	category        TEXT,
	country_code    TEXT,
	total_followers INTEGER
);

CREATE TABLE IF NOT EXISTS creator_accounts (
	id         TEXT PRIMARY KEY,
	creator_id TEXT NOT NULL REFERENCES creators(id),
	platform   TEXT NOT NULL,
	username   TEXT NOT NULL,
	url        TEXT,
	followers  INTEGER
);

CREATE TABLE IF NOT EXISTS videos (
	id                 TEXT PRIMARY KEY,
	creator_account_id TEXT NOT NULL REFERENCES creator_accounts(id),
	creator_id         TEXT NOT NULL REFERENCES creators(id),
	title              TEXT,
	views              INTEGER,
	published_at       DATETIME,
	category           TEXT,
	url                TEXT
);

CREATE TABLE IF NOT EXISTS sponsorships (
	id                   TEXT PRIMARY KEY,
	brand_id             TEXT NOT NULL REFERENCES brands(id),
	creator_id           TEXT NOT NULL REFERENCES creators(id),
	video_id             TEXT NOT NULL REFERENCES videos(id),
	detection_confidence REAL,
	mention_type         TEXT,
	start_second         INTEGER,
	created_at           DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sponsorships_brand_id ON sponsorships(brand_id);
CREATE INDEX IF NOT EXISTS idx_sponsorships_created_at ON sponsorships(created_at);
CREATE INDEX IF NOT EXISTS idx_videos_creator_account_id ON videos(creator_account_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListBrands(ctx context.Context, limit int) ([]model.Brand, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, website, description, primary_category FROM brands
		 ORDER BY name, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list brands")
	}
	defer rows.Close()

	brands := []model.Brand{}
	for rows.Next() {
		var b model.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Website, &b.Description, &b.PrimaryCategory); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan brand")
		}
		brands = append(brands, b)
	}
	return brands, eris.Wrap(rows.Err(), "sqlite: list brands iterate")
}

func (s *SQLiteStore) GetBrand(ctx context.Context, id string) (*model.Brand, error) {
	var b model.Brand
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, website, description, primary_category FROM brands WHERE id = ?`,
		id,
	).Scan(&b.ID, &b.Name, &b.Website, &b.Description, &b.PrimaryCategory)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: get brand")
	}
	return &b, nil
}

func (s *SQLiteStore) ListSponsorships(ctx context.Context, brandIDs []string) ([]model.SponsorshipRecord, error) {
	if len(brandIDs) == 0 {
		return []model.SponsorshipRecord{}, nil
	}
	args := make([]any, len(brandIDs))
	for i, id := range brandIDs {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(brandIDs)), ",")

	return s.queryJoined(ctx, "list sponsorships",
		`SELECT`+joinedColumns+joinedFrom+`
		 WHERE s.brand_id IN (`+placeholders+`)
		 ORDER BY s.created_at, s.id`,
		args...,
	)
}

func (s *SQLiteStore) ListBrandSponsorships(ctx context.Context, brandID string) ([]model.SponsorshipRecord, error) {
	return s.queryJoined(ctx, "list brand sponsorships",
		`SELECT`+joinedColumns+joinedFrom+`
		 WHERE s.brand_id = ?
		 ORDER BY s.created_at DESC, s.id`,
		brandID,
	)
}

func (s *SQLiteStore) queryJoined(ctx context.Context, op, query string, args ...any) ([]model.SponsorshipRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: %s", op)
	}
	defer rows.Close()

	out := []model.SponsorshipRecord{}
	for rows.Next() {
		var r joinedRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan %s", op)
		}
		out = append(out, r.record())
	}
	return out, eris.Wrapf(rows.Err(), "sqlite: %s iterate", op)
}

// Seed writes fixtures in one transaction, replacing rows with the same ids.
func (s *SQLiteStore) Seed(ctx context.Context, fx *Fixtures) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin seed")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, b := range fx.Brands {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO brands (id, name, website, description, primary_category) VALUES (?, ?, ?, ?, ?)`,
			b.ID, b.Name, b.Website, b.Description, b.PrimaryCategory,
		); err != nil {
			return eris.Wrapf(err, "sqlite: seed brand %s", b.ID)
		}
	}
	for _, c := range fx.Creators {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO creators (id, display_name, category, country_code, total_followers) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.DisplayName, c.Category, c.CountryCode, c.TotalFollowers,
		); err != nil {
			return eris.Wrapf(err, "sqlite: seed creator %s", c.ID)
		}
	}
	for _, a := range fx.Accounts {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO creator_accounts (id, creator_id, platform, username, url, followers) VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, a.CreatorID, string(a.Platform), a.Username, a.URL, a.Followers,
		); err != nil {
			return eris.Wrapf(err, "sqlite: seed account %s", a.ID)
		}
	}
	for _, v := range fx.Videos {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO videos (id, creator_account_id, creator_id, title, views, published_at, category, url) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			v.ID, v.CreatorAccountID, v.CreatorID, v.Title, v.Views, utcPtr(v.PublishedAt), v.Category, v.URL,
		); err != nil {
			return eris.Wrapf(err, "sqlite: seed video %s", v.ID)
		}
	}
	for _, sp := range fx.Sponsorships {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO sponsorships (id, brand_id, creator_id, video_id, detection_confidence, mention_type, start_second, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sp.ID, sp.BrandID, sp.CreatorID, sp.VideoID, sp.DetectionConfidence, sp.MentionType, sp.StartSecond, sp.CreatedAt.UTC(),
		); err != nil {
			return eris.Wrapf(err, "sqlite: seed sponsorship %s", sp.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit seed")
}
