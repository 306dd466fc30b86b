package service

import (
	"ads-board/internal/domain"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAd(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*domain.AdInput)
		wantField string
	}{
		{"valid", func(*domain.AdInput) {}, ""},
		{"unknown category", func(in *domain.AdInput) { in.Category = "Toys" }, "category"},
		{"all is not a category", func(in *domain.AdInput) { in.Category = domain.CategoryAll }, "category"},
		{"negative price", func(in *domain.AdInput) { in.Price = -1 }, "price"},
		{"nan price", func(in *domain.AdInput) { in.Price = math.NaN() }, "price"},
		{"infinite price", func(in *domain.AdInput) { in.Price = math.Inf(1) }, "price"},
		{"png image", func(in *domain.AdInput) { in.Image = pngBytes }, ""},
		{"jpeg image", func(in *domain.AdInput) { in.Image = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00") }, ""},
		{"text is not an image", func(in *domain.AdInput) { in.Image = []byte("hello world") }, "image"},
		{"image too large", func(in *domain.AdInput) { in.Image = append(append([]byte{}, pngBytes...), make([]byte, 64)...) }, "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			ad, err := BuildAd(in, 64)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.NotNil(t, ad)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.wantField)
			assert.Equal(t, verr.Fields[tt.wantField], verr.Message())
		})
	}
}

func TestBuildAd_SellerKeptWhenGiven(t *testing.T) {
	in := validInput()
	in.Seller = "  John Doe "

	ad, err := BuildAd(in, 0)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", ad.Seller)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"title":   "Title is required.",
		"contact": "Contact is required.",
	}}
	assert.Equal(t, "invalid ad: contact: Contact is required.; title: Title is required.", err.Error())
}
