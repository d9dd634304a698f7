package filter

import "hastnet-scraper/models"

// Names of the fields an ad must carry to be accepted
const (
	FieldImages      = "images"
	FieldTitle       = "title"
	FieldDescription = "description"
)

// Missing returns the required fields that are empty on the ad, in a fixed order.
// Race, age, length and seller details are optional.
func Missing(ad models.Ad) []string {
	var missing []string
	if len(ad.ImageURLs) == 0 {
		missing = append(missing, FieldImages)
	}
	if ad.Title == "" {
		missing = append(missing, FieldTitle)
	}
	if ad.Description == "" {
		missing = append(missing, FieldDescription)
	}
	return missing
}
