package service

import (
	"ads-board/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func board() []domain.Ad {
	return []domain.Ad{
		{Title: "iPhone 13 Pro", Category: domain.CategoryElectronics, Description: "Like new"},
		{Title: "Garden Hose", Category: domain.CategoryHomeGarden, Description: "25m, green"},
		{Title: "Road bike", Category: domain.CategorySports, Description: "Fits a PHONE holder"},
		{Title: "Laptop", Category: domain.CategoryElectronics, Description: "16GB RAM"},
	}
}

func titles(ads []domain.Ad) []string {
	out := make([]string, 0, len(ads))
	for _, ad := range ads {
		out = append(out, ad.Title)
	}
	return out
}

func TestFilterAds(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.ListFilter
		want   []string
	}{
		{"all reverses", domain.ListFilter{Category: domain.CategoryAll}, []string{"Laptop", "Road bike", "Garden Hose", "iPhone 13 Pro"}},
		{"empty selector is all", domain.ListFilter{}, []string{"Laptop", "Road bike", "Garden Hose", "iPhone 13 Pro"}},
		{"exact category", domain.ListFilter{Category: "Electronics"}, []string{"Laptop", "iPhone 13 Pro"}},
		{"category is case sensitive", domain.ListFilter{Category: "electronics"}, []string{}},
		{"search title or description", domain.ListFilter{Category: domain.CategoryAll, Search: "phone"}, []string{"Road bike", "iPhone 13 Pro"}},
		{"search upper case term", domain.ListFilter{Search: "HOSE"}, []string{"Garden Hose"}},
		{"category then search", domain.ListFilter{Category: "Electronics", Search: "phone"}, []string{"iPhone 13 Pro"}},
		{"no match", domain.ListFilter{Search: "tractor"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAds(board(), tt.filter)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestFilterAds_PhoneExcludesGardenHose(t *testing.T) {
	ads := []domain.Ad{
		{Title: "iPhone 13 Pro", Category: domain.CategoryElectronics, Description: "Unlocked"},
		{Title: "Garden Hose", Category: domain.CategoryHomeGarden, Description: "25m"},
	}

	got := FilterAds(ads, domain.ListFilter{Category: domain.CategoryAll, Search: "phone"})
	assert.Equal(t, []string{"iPhone 13 Pro"}, titles(got))
}

func TestFilterAds_DoesNotModifyInput(t *testing.T) {
	ads := board()
	FilterAds(ads, domain.ListFilter{})
	assert.Equal(t, board(), ads)
}
