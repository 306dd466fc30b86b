package service

import (
	"ads-board/internal/domain"
	"strings"
)

// FilterAds applies the category selector, then the search term, and returns
// the matches newest first. The input slice is not modified.
func FilterAds(ads []domain.Ad, filter domain.ListFilter) []domain.Ad {
	matched := make([]domain.Ad, 0, len(ads))

	search := strings.ToLower(filter.Search)
	byCategory := filter.Category != "" && filter.Category != domain.CategoryAll

	for _, ad := range ads {
		if byCategory && string(ad.Category) != filter.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(ad.Title), search) &&
			!strings.Contains(strings.ToLower(ad.Description), search) {
			continue
		}
		matched = append(matched, ad)
	}

	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}

	return matched
}
