package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"propsync/models"
)

// PostgresStore is the flat record store: one row per property keyed by its
// natural id, with a broker foreign key.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// =============================================================================
// Brokers
// =============================================================================

// UpsertBroker looks a broker up by name, inserting it on first sight and
// touching updated_at otherwise. Returns the id used as the property FK.
func (s *PostgresStore) UpsertBroker(ctx context.Context, name, website string) (uuid.UUID, error) {
	existing, err := s.GetBrokerByName(ctx, name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("get broker: %w", err)
	}

	if existing != nil {
		query := `
			UPDATE brokers SET
				website = COALESCE(NULLIF($2, ''), website),
				updated_at = NOW()
			WHERE id = $1`
		if _, err := s.pool.Exec(ctx, query, existing.ID, website); err != nil {
			return uuid.Nil, fmt.Errorf("touch broker: %w", err)
		}
		return existing.ID, nil
	}

	broker := models.Broker{
		ID:      uuid.New(),
		Name:    name,
		Website: website,
	}
	query := `
		INSERT INTO brokers (id, name, website, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET updated_at = NOW()
		RETURNING id`

	if err := s.pool.QueryRow(ctx, query, broker.ID, broker.Name, broker.Website).Scan(&broker.ID); err != nil {
		return uuid.Nil, fmt.Errorf("insert broker: %w", err)
	}
	return broker.ID, nil
}

func (s *PostgresStore) GetBrokerByName(ctx context.Context, name string) (*models.Broker, error) {
	query := `
		SELECT id, name, website, created_at, updated_at
		FROM brokers WHERE name = $1`

	var b models.Broker
	err := s.pool.QueryRow(ctx, query, name).Scan(
		&b.ID, &b.Name, &b.Website, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// =============================================================================
// Properties
// =============================================================================

// UpsertProperty is a create-or-update keyed by the property's natural id.
// Numeric zero means unknown and never clobbers a previously known value.
func (s *PostgresStore) UpsertProperty(ctx context.Context, p *models.Property, brokerID uuid.UUID) error {
	query := `
		INSERT INTO properties (
			id, broker_id, title, description, detail_url, image_url,
			location_raw, city, state, zip, units, year_built,
			price_raw, price_cents, square_feet, status, source,
			scraped_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW(), NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			broker_id = EXCLUDED.broker_id,
			title = COALESCE(NULLIF(EXCLUDED.title, ''), properties.title),
			description = COALESCE(NULLIF(EXCLUDED.description, ''), properties.description),
			detail_url = COALESCE(NULLIF(EXCLUDED.detail_url, ''), properties.detail_url),
			image_url = COALESCE(NULLIF(EXCLUDED.image_url, ''), properties.image_url),
			location_raw = COALESCE(NULLIF(EXCLUDED.location_raw, ''), properties.location_raw),
			city = COALESCE(NULLIF(EXCLUDED.city, ''), properties.city),
			state = COALESCE(NULLIF(EXCLUDED.state, ''), properties.state),
			zip = COALESCE(NULLIF(EXCLUDED.zip, ''), properties.zip),
			units = COALESCE(NULLIF(EXCLUDED.units, 0), properties.units),
			year_built = COALESCE(NULLIF(EXCLUDED.year_built, 0), properties.year_built),
			price_raw = COALESCE(NULLIF(EXCLUDED.price_raw, ''), properties.price_raw),
			price_cents = COALESCE(NULLIF(EXCLUDED.price_cents, 0), properties.price_cents),
			square_feet = COALESCE(NULLIF(EXCLUDED.square_feet, 0), properties.square_feet),
			status = EXCLUDED.status,
			source = EXCLUDED.source,
			scraped_at = EXCLUDED.scraped_at,
			updated_at = NOW()`

	_, err := s.pool.Exec(ctx, query,
		p.ID, brokerID, p.Title, p.Description, p.DetailURL, p.ImageURL,
		p.Location.Raw, p.Location.City, p.Location.State, p.Location.Zip,
		p.Units, p.YearBuilt, p.PriceRaw, p.PriceCents, p.SquareFeet,
		p.Status, p.Source, p.ScrapedAt,
	)
	return err
}

func (s *PostgresStore) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	query := `
		SELECT id, title, description, detail_url, image_url,
			location_raw, city, state, zip, units, year_built,
			price_raw, price_cents, square_feet, status, source, scraped_at
		FROM properties WHERE id = $1`

	var p models.Property
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Description, &p.DetailURL, &p.ImageURL,
		&p.Location.Raw, &p.Location.City, &p.Location.State, &p.Location.Zip,
		&p.Units, &p.YearBuilt, &p.PriceRaw, &p.PriceCents, &p.SquareFeet,
		&p.Status, &p.Source, &p.ScrapedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ReconcileRow pairs a property with its broker for the consistency pass.
type ReconcileRow struct {
	Property      models.Property
	BrokerID      uuid.UUID
	BrokerName    string
	BrokerWebsite string
}

// ListPropertiesForReconcile returns the most recently updated properties
// joined to their brokers, newest first.
func (s *PostgresStore) ListPropertiesForReconcile(ctx context.Context, limit int) ([]ReconcileRow, error) {
	query := `
		SELECT p.id, p.title, p.description, p.detail_url, p.image_url,
			p.location_raw, p.city, p.state, p.zip, p.units, p.year_built,
			p.price_raw, p.price_cents, p.square_feet, p.status, p.source, p.scraped_at,
			b.id, b.name, b.website
		FROM properties p
		JOIN brokers b ON b.id = p.broker_id
		ORDER BY p.updated_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReconcileRow
	for rows.Next() {
		var r ReconcileRow
		p := &r.Property
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.DetailURL, &p.ImageURL,
			&p.Location.Raw, &p.Location.City, &p.Location.State, &p.Location.Zip,
			&p.Units, &p.YearBuilt, &p.PriceRaw, &p.PriceCents, &p.SquareFeet,
			&p.Status, &p.Source, &p.ScrapedAt,
			&r.BrokerID, &r.BrokerName, &r.BrokerWebsite,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// Ingest Runs
// =============================================================================

func (s *PostgresStore) CreateIngestRun(ctx context.Context, run *models.IngestRun) error {
	query := `
		INSERT INTO ingest_runs (source, started_at, status, pages_processed, candidates_found, properties_saved, errors_count, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		run.Source, run.StartedAt, run.Status, run.PagesProcessed,
		run.CandidatesFound, run.PropertiesSaved, run.ErrorsCount, run.Metadata,
	).Scan(&run.ID)
}

func (s *PostgresStore) UpdateIngestRun(ctx context.Context, run *models.IngestRun) error {
	query := `
		UPDATE ingest_runs SET
			finished_at = $2, status = $3, pages_processed = $4,
			candidates_found = $5, properties_saved = $6, errors_count = $7, metadata = $8
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		run.ID, run.FinishedAt, run.Status, run.PagesProcessed,
		run.CandidatesFound, run.PropertiesSaved, run.ErrorsCount, run.Metadata,
	)
	return err
}
