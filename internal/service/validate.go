package service

import (
	"ads-board/internal/domain"
	"encoding/base64"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
)

// RequiredFieldsMessage is shown when title, description or contact is blank.
const RequiredFieldsMessage = "Title, description, and contact are required!"

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// ValidationError carries one message per rejected form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid ad"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "invalid ad: " + strings.Join(parts, "; ")
}

// Message is the single user-facing summary for the form.
func (e *ValidationError) Message() string {
	for _, field := range []string{"title", "description", "contact"} {
		if _, ok := e.Fields[field]; ok {
			return RequiredFieldsMessage
		}
	}
	for _, field := range []string{"category", "price", "image"} {
		if msg, ok := e.Fields[field]; ok {
			return msg
		}
	}
	return "Invalid ad."
}

// BuildAd validates input and returns the record to persist.
// A zero maxImageBytes disables the image size cap.
func BuildAd(input domain.AdInput, maxImageBytes int64) (*domain.Ad, error) {
	fields := map[string]string{}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	contact := strings.TrimSpace(input.Contact)

	if title == "" {
		fields["title"] = "Title is required."
	}
	if description == "" {
		fields["description"] = "Description is required."
	}
	if contact == "" {
		fields["contact"] = "Contact is required."
	}

	category := domain.Category(input.Category)
	if !category.Valid() {
		fields["category"] = fmt.Sprintf("Unknown category %q.", input.Category)
	}

	if math.IsNaN(input.Price) || math.IsInf(input.Price, 0) || input.Price < 0 {
		fields["price"] = "Price must be a non-negative number."
	}

	if len(input.Image) > 0 {
		if maxImageBytes > 0 && int64(len(input.Image)) > maxImageBytes {
			fields["image"] = fmt.Sprintf("Image is too large (max %d bytes).", maxImageBytes)
		} else if !allowedImageTypes[http.DetectContentType(input.Image)] {
			fields["image"] = "Image must be a PNG or JPEG file."
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	seller := strings.TrimSpace(input.Seller)
	if seller == "" {
		seller = domain.DefaultSeller
	}

	ad := &domain.Ad{
		Title:       title,
		Seller:      seller,
		Category:    category,
		Description: description,
		Contact:     contact,
	}

	if input.Price > 0 {
		price := input.Price
		ad.Price = &price
	}

	if len(input.Image) > 0 {
		ad.ImageBase64 = base64.StdEncoding.EncodeToString(input.Image)
	}

	return ad, nil
}
