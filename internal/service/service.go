package service

import (
	"ads-board/internal/domain"
	"ads-board/internal/infrastructure/metrics"
	"ads-board/internal/repository"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrStorageUnavailable is returned when the store cannot be read safely.
var ErrStorageUnavailable = errors.New("ad storage is unavailable")

type ListResult struct {
	Ads             []domain.Ad `json:"ads"`
	Total           int         `json:"total"`
	StorageDegraded bool        `json:"storage_degraded"`
}

type AdService interface {
	SubmitAd(ctx context.Context, input domain.AdInput) (*domain.Ad, error)
	ListAds(ctx context.Context, filter domain.ListFilter) (*ListResult, error)
}

type adService struct {
	repository    repository.AdRepository
	metrics       *metrics.ServiceMetrics
	tracer        trace.Tracer
	maxImageBytes int64

	// serializes load-append-save within this process
	mu sync.Mutex
}

func NewAdService(repository repository.AdRepository, metrics *metrics.ServiceMetrics, maxImageBytes int64) AdService {
	tracer := otel.Tracer("ads-board/service")
	return &adService{
		repository:    repository,
		metrics:       metrics,
		tracer:        tracer,
		maxImageBytes: maxImageBytes,
	}
}

func (s *adService) SubmitAd(ctx context.Context, input domain.AdInput) (*domain.Ad, error) {
	ctx, span := s.tracer.Start(ctx, "SubmitAd")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.MethodCount.WithLabelValues("SubmitAd", status).Inc()
		s.metrics.MethodDuration.WithLabelValues("SubmitAd", status).Observe(duration)
	}()

	ad, err := BuildAd(input, s.maxImageBytes)
	if err != nil {
		status = "invalid"
		s.metrics.ValidationFail.Inc()
		return nil, err
	}

	span.SetAttributes(
		attribute.String("ad.title", ad.Title),
		attribute.String("ad.category", string(ad.Category)),
		attribute.Bool("ad.has_image", ad.HasImage()),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	ads, err := s.repository.LoadFresh(ctx)
	if err != nil {
		status = "error"
		span.RecordError(err)
		if errors.Is(err, repository.ErrStorageCorrupt) {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return nil, err
	}

	ads = append(ads, *ad)

	if err := s.repository.Save(ctx, ads); err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	s.metrics.AdsSubmitted.Inc()
	span.SetAttributes(attribute.Int("ads.count", len(ads)))

	return ad, nil
}

func (s *adService) ListAds(ctx context.Context, filter domain.ListFilter) (*ListResult, error) {
	ctx, span := s.tracer.Start(ctx, "ListAds")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.MethodCount.WithLabelValues("ListAds", status).Inc()
		s.metrics.MethodDuration.WithLabelValues("ListAds", status).Observe(duration)
	}()

	span.SetAttributes(
		attribute.String("filter.category", filter.Category),
		attribute.String("filter.search", filter.Search),
	)

	ads, err := s.repository.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrStorageCorrupt) {
			status = "degraded"
			span.RecordError(err)
			return &ListResult{Ads: []domain.Ad{}, StorageDegraded: true}, nil
		}
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	filtered := FilterAds(ads, filter)
	span.SetAttributes(attribute.Int("ads.matched", len(filtered)))

	return &ListResult{
		Ads:   filtered,
		Total: len(filtered),
	}, nil
}
