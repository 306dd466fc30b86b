package repository

import (
	"ads-board/internal/domain"
	"ads-board/internal/infrastructure/metrics"
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const createAdsTable = `
	CREATE TABLE IF NOT EXISTS ads (
		position     BIGINT AUTO_INCREMENT PRIMARY KEY,
		title        VARCHAR(300) NOT NULL,
		seller       VARCHAR(200) NOT NULL,
		category     VARCHAR(64)  NOT NULL,
		description  TEXT         NOT NULL,
		price        DOUBLE       NULL,
		contact      VARCHAR(300) NOT NULL,
		image_base64 LONGTEXT     NULL
	)`

type mysqlAdRepository struct {
	db      *sql.DB
	metrics *metrics.RepositoryMetrics
	tracer  trace.Tracer
}

// NewMysqlAdRepository keeps one row per ad; position preserves submission order.
func NewMysqlAdRepository(db *sql.DB, metrics *metrics.RepositoryMetrics) AdRepository {
	tracer := otel.Tracer("ads-board/repository")
	return &mysqlAdRepository{
		db:      db,
		metrics: metrics,
		tracer:  tracer,
	}
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createAdsTable); err != nil {
		return fmt.Errorf("failed to create ads table: %w", err)
	}
	return nil
}

func (r *mysqlAdRepository) Load(ctx context.Context) ([]domain.Ad, error) {
	ctx, span := r.tracer.Start(ctx, "Repository Load")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.QueryCount.WithLabelValues("Load", status).Inc()
		r.metrics.QueryDuration.WithLabelValues("Load", status).Observe(duration)
	}()

	query := `
		SELECT title, seller, category, description, price, contact, image_base64
		FROM ads
		ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return []domain.Ad{}, fmt.Errorf("failed to retrieve ads: %w", err)
	}
	defer rows.Close()

	ads := []domain.Ad{}
	for rows.Next() {
		var (
			ad       domain.Ad
			category string
			price    sql.NullFloat64
			image    sql.NullString
		)
		if err := rows.Scan(&ad.Title, &ad.Seller, &category, &ad.Description, &price, &ad.Contact, &image); err != nil {
			status = "error"
			span.RecordError(err)
			return []domain.Ad{}, fmt.Errorf("failed to scan ad: %w", err)
		}
		ad.Category = domain.Category(category)
		if price.Valid {
			p := price.Float64
			ad.Price = &p
		}
		ad.ImageBase64 = image.String
		ads = append(ads, ad)
	}

	if err := rows.Err(); err != nil {
		status = "error"
		span.RecordError(err)
		return []domain.Ad{}, fmt.Errorf("rows error: %w", err)
	}

	span.SetAttributes(attribute.Int("ads.count", len(ads)))
	r.metrics.StoredAds.Set(float64(len(ads)))

	return ads, nil
}

func (r *mysqlAdRepository) LoadFresh(ctx context.Context) ([]domain.Ad, error) {
	return r.Load(ctx)
}

// Save replaces the table contents inside one transaction.
func (r *mysqlAdRepository) Save(ctx context.Context, ads []domain.Ad) (err error) {
	ctx, span := r.tracer.Start(ctx, "Repository Save")
	defer span.End()

	span.SetAttributes(attribute.Int("ads.count", len(ads)))

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.QueryCount.WithLabelValues("Save", status).Inc()
		r.metrics.QueryDuration.WithLabelValues("Save", status).Observe(duration)
	}()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			status = "error"
			span.RecordError(err)
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM ads"); err != nil {
		return fmt.Errorf("failed to clear ads: %w", err)
	}

	for _, ad := range ads {
		var price sql.NullFloat64
		if ad.Price != nil {
			price = sql.NullFloat64{Float64: *ad.Price, Valid: true}
		}
		image := sql.NullString{String: ad.ImageBase64, Valid: ad.ImageBase64 != ""}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO ads (title, seller, category, description, price, contact, image_base64) VALUES (?, ?, ?, ?, ?, ?, ?)",
			ad.Title, ad.Seller, string(ad.Category), ad.Description, price, ad.Contact, image)
		if err != nil {
			return fmt.Errorf("failed to insert ad: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ads: %w", err)
	}

	r.metrics.StoredAds.Set(float64(len(ads)))

	return nil
}
