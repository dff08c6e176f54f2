package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/competitor-intel/internal/db"
	"github.com/sells-group/competitor-intel/internal/model"
)

// PostgresStore implements Store over a pgx pool. Ids are compared as text
// so uuid and text key columns both work.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres connects to the sponsorship database.
func NewPostgres(ctx context.Context, connString string, poolCfg db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, connString, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// pgJoinedColumns is joinedColumns with ids cast to text and numerics
// widened to the scan target types.
const pgJoinedColumns = `
	s.id::text, s.brand_id::text, s.creator_id::text, s.video_id::text,
	s.detection_confidence::float8, s.mention_type, s.start_second::bigint, s.created_at,
	b.name,
	c.id::text, c.display_name, c.category, c.country_code, c.total_followers::bigint,
	v.id::text, v.creator_account_id::text, v.title, v.views::bigint, v.published_at, v.category, v.url,
	a.id::text, a.platform, a.username, a.url, a.followers::bigint`

func (s *PostgresStore) ListBrands(ctx context.Context, limit int) ([]model.Brand, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, name, website, description, primary_category FROM brands
		 ORDER BY name, id LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list brands")
	}
	defer rows.Close()

	brands := []model.Brand{}
	for rows.Next() {
		var b model.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Website, &b.Description, &b.PrimaryCategory); err != nil {
			return nil, eris.Wrap(err, "postgres: scan brand")
		}
		brands = append(brands, b)
	}
	return brands, eris.Wrap(rows.Err(), "postgres: list brands iterate")
}

func (s *PostgresStore) GetBrand(ctx context.Context, id string) (*model.Brand, error) {
	var b model.Brand
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, name, website, description, primary_category FROM brands WHERE id::text = $1`,
		id,
	).Scan(&b.ID, &b.Name, &b.Website, &b.Description, &b.PrimaryCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get brand")
	}
	return &b, nil
}

func (s *PostgresStore) ListSponsorships(ctx context.Context, brandIDs []string) ([]model.SponsorshipRecord, error) {
	return s.queryJoined(ctx, "list sponsorships",
		`SELECT`+pgJoinedColumns+joinedFrom+`
		 WHERE s.brand_id::text = ANY($1)
		 ORDER BY s.created_at, s.id`,
		brandIDs,
	)
}

func (s *PostgresStore) ListBrandSponsorships(ctx context.Context, brandID string) ([]model.SponsorshipRecord, error) {
	return s.queryJoined(ctx, "list brand sponsorships",
		`SELECT`+pgJoinedColumns+joinedFrom+`
		 WHERE s.brand_id::text = $1
		 ORDER BY s.created_at DESC, s.id`,
		brandID,
	)
}

func (s *PostgresStore) queryJoined(ctx context.Context, op, sql string, args ...any) ([]model.SponsorshipRecord, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: %s", op)
	}
	defer rows.Close()

	out := []model.SponsorshipRecord{}
	for rows.Next() {
		var r joinedRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, eris.Wrapf(err, "postgres: scan %s", op)
		}
		out = append(out, r.record())
	}
	return out, eris.Wrapf(rows.Err(), "postgres: %s iterate", op)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
