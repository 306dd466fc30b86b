package handler

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"errors"
	"html/template"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ads-board/internal/domain"
	"ads-board/internal/service"
	"ads-board/pkg/utils"

	"go.opentelemetry.io/otel/attribute"
)

//go:embed templates/*.html
var templateFS embed.FS

// maxFormOverhead bounds the non-image part of a submission.
const maxFormOverhead = 1 << 20

var boardTemplate = template.Must(
	template.New("board.html").Funcs(template.FuncMap{
		"imageSrc": imageSrc,
	}).ParseFS(templateFS, "templates/board.html"),
)

type formValues struct {
	Title       string
	Seller      string
	Category    string
	Description string
	Price       string
	Contact     string
}

type boardPage struct {
	Categories      []domain.Category
	Filter          domain.ListFilter
	Ads             []domain.Ad
	Total           int
	StorageDegraded bool
	Success         string
	Error           string
	Form            formValues
}

func (h *AdHandler) ShowBoard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ShowBoard")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("GET", "/", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("GET", "/", status).Observe(duration)
	}()

	page := boardPage{Form: formValues{Category: string(domain.CategoryElectronics)}}
	if r.URL.Query().Get("posted") == "1" {
		page.Success = "Ad posted successfully!"
	}

	if err := h.fillListing(ctx, r, &page); err != nil {
		status = "error"
		span.RecordError(err)
		h.logger.ErrorLogger.Error("failed to list ads", utils.Err(err))
		http.Error(w, "could not retrieve ads", http.StatusInternalServerError)
		return
	}
	if page.StorageDegraded {
		status = "degraded"
	}

	h.render(w, http.StatusOK, page)
}

func (h *AdHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitForm")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("POST", "/ads", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("POST", "/ads", status).Observe(duration)
	}()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+maxFormOverhead)

	if err := r.ParseMultipartForm(maxFormOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = "invalid"
			http.Error(w, "submission is too large", http.StatusRequestEntityTooLarge)
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			status = "error"
			span.RecordError(err)
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		if err := r.ParseForm(); err != nil {
			status = "error"
			span.RecordError(err)
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
	}

	form := formValues{
		Title:       r.PostFormValue("title"),
		Seller:      r.PostFormValue("seller"),
		Category:    r.PostFormValue("category"),
		Description: r.PostFormValue("description"),
		Price:       r.PostFormValue("price"),
		Contact:     r.PostFormValue("contact"),
	}

	input := domain.AdInput{
		Title:       form.Title,
		Seller:      form.Seller,
		Category:    form.Category,
		Description: form.Description,
		Price:       parsePrice(form.Price),
		Contact:     form.Contact,
	}

	image, err := readUpload(r, "image")
	if err != nil {
		status = "error"
		span.RecordError(err)
		http.Error(w, "could not read image upload", http.StatusBadRequest)
		return
	}
	input.Image = image

	span.SetAttributes(
		attribute.String("ad.title", input.Title),
		attribute.Bool("ad.has_image", len(image) > 0),
	)

	_, err = h.service.SubmitAd(ctx, input)
	if err == nil {
		http.Redirect(w, r, "/?posted=1", http.StatusSeeOther)
		return
	}

	span.RecordError(err)
	page := boardPage{Form: form}
	code := http.StatusInternalServerError

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		status = "invalid"
		code = http.StatusUnprocessableEntity
		page.Error = verr.Message()
	case errors.Is(err, service.ErrStorageUnavailable):
		status = "unavailable"
		code = http.StatusServiceUnavailable
		page.Error = "The ad board storage is unavailable right now. Your ad was not saved."
		h.logger.ErrorLogger.Error("refusing to write over corrupt storage", utils.Err(err))
	default:
		status = "error"
		page.Error = "Could not save your ad. Please try again."
		h.logger.ErrorLogger.Error("Could not create ad", utils.Err(err))
	}

	if err := h.fillListing(ctx, r, &page); err != nil {
		h.logger.ErrorLogger.Error("failed to list ads", utils.Err(err))
	}

	h.render(w, code, page)
}

func (h *AdHandler) fillListing(ctx context.Context, r *http.Request, page *boardPage) error {
	filter := listFilterFromQuery(r)
	page.Categories = domain.Categories
	page.Filter = filter

	result, err := h.service.ListAds(ctx, filter)
	if err != nil {
		return err
	}

	page.Ads = result.Ads
	page.Total = result.Total
	page.StorageDegraded = result.StorageDegraded
	return nil
}

func (h *AdHandler) render(w http.ResponseWriter, code int, page boardPage) {
	var buf bytes.Buffer
	if err := boardTemplate.Execute(&buf, page); err != nil {
		h.logger.ErrorLogger.Error("failed to render board", utils.Err(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	buf.WriteTo(w)
}

// parsePrice maps blank input to zero and unparsable input to NaN,
// which validation rejects.
func parsePrice(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return price
}

func readUpload(r *http.Request, field string) ([]byte, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

func imageSrc(ad domain.Ad) template.URL {
	mime := "image/png"
	if head, err := base64.StdEncoding.DecodeString(ad.ImageBase64[:min(len(ad.ImageBase64), 16)]); err == nil {
		mime = http.DetectContentType(head)
	}
	return template.URL("data:" + mime + ";base64," + ad.ImageBase64)
}
