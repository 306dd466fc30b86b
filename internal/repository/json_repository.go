package repository

import (
	"ads-board/internal/domain"
	"ads-board/internal/infrastructure/metrics"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type jsonFileAdRepository struct {
	fs      afero.Fs
	path    string
	metrics *metrics.RepositoryMetrics
	tracer  trace.Tracer
}

// NewJSONFileAdRepository stores the board as a single JSON array at path.
func NewJSONFileAdRepository(fs afero.Fs, path string, metrics *metrics.RepositoryMetrics) AdRepository {
	tracer := otel.Tracer("ads-board/repository")
	return &jsonFileAdRepository{
		fs:      fs,
		path:    path,
		metrics: metrics,
		tracer:  tracer,
	}
}

func (r *jsonFileAdRepository) Load(ctx context.Context) ([]domain.Ad, error) {
	_, span := r.tracer.Start(ctx, "Repository Load")
	defer span.End()

	span.SetAttributes(attribute.String("storage.path", r.path))

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.QueryCount.WithLabelValues("Load", status).Inc()
		r.metrics.QueryDuration.WithLabelValues("Load", status).Observe(duration)
	}()

	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			status = "not_found"
			r.metrics.StoredAds.Set(0)
			return []domain.Ad{}, nil
		}
		status = "error"
		span.RecordError(err)
		return []domain.Ad{}, fmt.Errorf("failed to read ads file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		r.metrics.StoredAds.Set(0)
		return []domain.Ad{}, nil
	}

	var ads []domain.Ad
	if err := json.Unmarshal(data, &ads); err != nil || ads == nil {
		status = "corrupt"
		if err == nil {
			err = errors.New("root is not an array")
		}
		span.RecordError(err)
		return []domain.Ad{}, fmt.Errorf("%w: %s: %v", ErrStorageCorrupt, r.path, err)
	}

	span.SetAttributes(attribute.Int("ads.count", len(ads)))
	r.metrics.StoredAds.Set(float64(len(ads)))

	return ads, nil
}

func (r *jsonFileAdRepository) LoadFresh(ctx context.Context) ([]domain.Ad, error) {
	return r.Load(ctx)
}

// Save writes to a temp file next to the target and renames it into place,
// so readers never observe a partially written document.
func (r *jsonFileAdRepository) Save(ctx context.Context, ads []domain.Ad) error {
	_, span := r.tracer.Start(ctx, "Repository Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("storage.path", r.path),
		attribute.Int("ads.count", len(ads)),
	)

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.QueryCount.WithLabelValues("Save", status).Inc()
		r.metrics.QueryDuration.WithLabelValues("Save", status).Observe(duration)
	}()

	if ads == nil {
		ads = []domain.Ad{}
	}

	data, err := json.MarshalIndent(ads, "", "  ")
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("failed to encode ads: %w", err)
	}

	if err := r.writeAtomic(data); err != nil {
		status = "error"
		span.RecordError(err)
		return err
	}

	r.metrics.StoredAds.Set(float64(len(ads)))

	return nil
}

func (r *jsonFileAdRepository) writeAtomic(data []byte) error {
	dir := filepath.Dir(r.path)
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmp, err := afero.TempFile(r.fs, dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		r.fs.Remove(tmpName)
		return fmt.Errorf("failed to write ads file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		r.fs.Remove(tmpName)
		return fmt.Errorf("failed to sync ads file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		r.fs.Remove(tmpName)
		return fmt.Errorf("failed to close ads file: %w", err)
	}

	if err := r.fs.Rename(tmpName, r.path); err != nil {
		r.fs.Remove(tmpName)
		return fmt.Errorf("failed to replace ads file: %w", err)
	}

	return nil
}
