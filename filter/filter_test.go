package filter

import (
	"testing"

	"hastnet-scraper/models"

	"github.com/stretchr/testify/assert"
)

func TestMissing(t *testing.T) {
	tests := []struct {
		name string
		ad   models.Ad
		want []string
	}{
		{"complete", models.Ad{ImageURLs: []string{"a"}, Title: "t", Description: "d"}, nil},
		{"optional fields empty", models.Ad{ImageURLs: []string{"a"}, Title: "t", Description: "d", Race: ""}, nil},
		{"no images", models.Ad{Title: "t", Description: "d"}, []string{FieldImages}},
		{"no title", models.Ad{ImageURLs: []string{"a"}, Description: "d"}, []string{FieldTitle}},
		{"no description", models.Ad{ImageURLs: []string{"a"}, Title: "t"}, []string{FieldDescription}},
		{"empty", models.Ad{}, []string{FieldImages, FieldTitle, FieldDescription}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Missing(tt.ad))
		})
	}
}
