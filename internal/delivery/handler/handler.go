package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ads-board/internal/domain"
	"ads-board/internal/service"
	"ads-board/pkg/logger"
	"ads-board/pkg/utils"

	"ads-board/internal/infrastructure/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type AdHandler struct {
	service       service.AdService
	logger        *logger.Loggers
	metrics       *metrics.HandlerMetrics
	tracer        trace.Tracer
	maxImageBytes int64
}

func NewAdHandler(service service.AdService, logger *logger.Loggers, metrics *metrics.HandlerMetrics, maxImageBytes int64) *AdHandler {
	tracer := otel.Tracer("ads-board/handler")
	return &AdHandler{
		service:       service,
		logger:        logger,
		metrics:       metrics,
		tracer:        tracer,
		maxImageBytes: maxImageBytes,
	}
}

type createAdRequest struct {
	Title       string  `json:"title"`
	Seller      string  `json:"seller"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Contact     string  `json:"contact"`
	ImageBase64 string  `json:"image_base64"`
}

func (h *AdHandler) ListAds(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListAds")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("GET", "/api/ads", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("GET", "/api/ads", status).Observe(duration)
	}()

	filter := listFilterFromQuery(r)

	span.SetAttributes(
		attribute.String("filter.category", filter.Category),
		attribute.String("filter.search", filter.Search),
	)

	result, err := h.service.ListAds(ctx, filter)
	if err != nil {
		status = "error"
		h.logger.ErrorLogger.Error("failed to list ads", utils.Err(err))
		span.RecordError(err)
		utils.RespondWithErrorJSON(w, http.StatusInternalServerError, "could not retrieve ads")
		return
	}

	if result.StorageDegraded {
		status = "degraded"
		h.logger.ErrorLogger.Error("ad storage is corrupt, serving empty board")
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *AdHandler) CreateAd(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateAd")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("POST", "/api/ads", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("POST", "/api/ads", status).Observe(duration)
	}()

	// base64 inflates by 4/3; leave headroom for the other fields
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes*4/3+maxFormOverhead)

	var adReq createAdRequest
	if err := json.NewDecoder(r.Body).Decode(&adReq); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = "invalid"
			span.RecordError(err)
			utils.RespondWithErrorJSON(w, http.StatusRequestEntityTooLarge, "request body is too large")
			return
		}
		status = "error"
		h.logger.ErrorLogger.Error("Invalid request payload", utils.Err(err))
		span.RecordError(err)
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	input := domain.AdInput{
		Title:       adReq.Title,
		Seller:      adReq.Seller,
		Category:    adReq.Category,
		Description: adReq.Description,
		Price:       adReq.Price,
		Contact:     adReq.Contact,
	}

	if adReq.ImageBase64 != "" {
		image, err := base64.StdEncoding.DecodeString(adReq.ImageBase64)
		if err != nil {
			status = "invalid"
			utils.RespondWithFieldErrorsJSON(w, http.StatusUnprocessableEntity, "invalid ad",
				map[string]string{"image": "Image must be base64 encoded."})
			return
		}
		input.Image = image
	}

	span.SetAttributes(
		attribute.String("ad.title", adReq.Title),
		attribute.Float64("ad.price", adReq.Price),
	)

	createdAd, err := h.service.SubmitAd(ctx, input)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			status = "invalid"
			utils.RespondWithFieldErrorsJSON(w, http.StatusUnprocessableEntity, verr.Message(), verr.Fields)
		} else if errors.Is(err, service.ErrStorageUnavailable) {
			status = "unavailable"
			h.logger.ErrorLogger.Error("refusing to write over corrupt storage", utils.Err(err))
			utils.RespondWithErrorJSON(w, http.StatusServiceUnavailable, "ad storage is unavailable")
		} else {
			status = "error"
			h.logger.ErrorLogger.Error("Could not create ad", utils.Err(err))
			utils.RespondWithErrorJSON(w, http.StatusInternalServerError, "Could not create ad")
		}
		span.RecordError(err)
		return
	}

	h.logger.InfoLogger.Info("ad posted", "title", createdAd.Title, "category", createdAd.Category)
	utils.RespondWithJSON(w, http.StatusCreated, createdAd)
}

func (h *AdHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, domain.Categories)
}

func listFilterFromQuery(r *http.Request) domain.ListFilter {
	query := r.URL.Query()

	category := query.Get("category")
	if category == "" {
		category = domain.CategoryAll
	}

	return domain.ListFilter{
		Category: category,
		Search:   query.Get("q"),
	}
}
