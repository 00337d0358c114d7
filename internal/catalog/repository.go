package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/launchset/gym-booking/domain"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Repository reads the catalog and promo codes from a SQLite file. It is only
// consulted at start-up; the result is frozen into a Catalog and a promo book.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases consistent
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) LoadOfferings(ctx context.Context) ([]domain.Offering, error) {
	query := `
		SELECT id, name, description, coach, duration_min, base_price, capacity, emoji, payment_link
		FROM offerings
		ORDER BY position, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query offerings: %w", err)
	}
	defer rows.Close()

	var offerings []domain.Offering
	for rows.Next() {
		var o domain.Offering
		err := rows.Scan(
			&o.ID,
			&o.Name,
			&o.Description,
			&o.Coach,
			&o.DurationMin,
			&o.BasePrice,
			&o.Capacity,
			&o.Emoji,
			&o.PaymentLink,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offering: %w", err)
		}
		offerings = append(offerings, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return offerings, nil
}

func (r *Repository) LoadPromoCodes(ctx context.Context) ([]domain.PromoCode, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, fraction FROM promo_codes ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query promo codes: %w", err)
	}
	defer rows.Close()

	var promos []domain.PromoCode
	for rows.Next() {
		var code, fraction string
		if err := rows.Scan(&code, &fraction); err != nil {
			return nil, fmt.Errorf("failed to scan promo code: %w", err)
		}
		f, err := decimal.NewFromString(fraction)
		if err != nil {
			return nil, fmt.Errorf("promo code %s has invalid fraction %q: %w", code, fraction, err)
		}
		promos = append(promos, domain.PromoCode{Code: code, Fraction: f})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return promos, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
