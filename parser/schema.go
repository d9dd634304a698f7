package parser

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// Schema maps the parts of a listing tile to CSS selectors.
// Field selectors are evaluated relative to the matched listing element.
type Schema struct {
	Listing        string `yaml:"listing"`
	Image          string `yaml:"image"`
	ImageAttr      string `yaml:"image_attr"`
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	Race           string `yaml:"race"`
	Age            string `yaml:"age"`
	Length         string `yaml:"length"`
	SellerName     string `yaml:"seller_name"`
	SellerLocation string `yaml:"seller_location"`
}

// DefaultSchema returns the selectors for the hastnet.se search result markup
func DefaultSchema() Schema {
	return Schema{
		Listing:        "div.ListingsList_searchResults__Uf_4T a.Link_link__ce5zB",
		Image:          "img",
		ImageAttr:      "src",
		Title:          "h2.ListingTile_title___y0N4",
		Description:    "span.ListingTile_description__Gz9R8",
		Race:           `span[data-testid="listing-tile-attr-breed"]`,
		Age:            `span[data-testid="listing-tile-attr-birthYear"]`,
		Length:         `span[data-testid="listing-tile-attr-height"]`,
		SellerName:     "span.ListingTile_sellerName__kLEin",
		SellerLocation: `span[data-testid="listing-location"]`,
	}
}

// field is a named selector
type field struct {
	name     string
	selector string
}

func (s Schema) fields() []field {
	return []field{
		{"listing", s.Listing},
		{"image", s.Image},
		{"title", s.Title},
		{"description", s.Description},
		{"race", s.Race},
		{"age", s.Age},
		{"length", s.Length},
		{"seller_name", s.SellerName},
		{"seller_location", s.SellerLocation},
	}
}

// Validate checks that every selector is present and compiles
func (s Schema) Validate() error {
	_, err := s.compile()
	return err
}

// compiled holds the schema selectors ready for matching
type compiled struct {
	listing        cascadia.Selector
	image          cascadia.Selector
	imageAttr      string
	title          cascadia.Selector
	description    cascadia.Selector
	race           cascadia.Selector
	age            cascadia.Selector
	length         cascadia.Selector
	sellerName     cascadia.Selector
	sellerLocation cascadia.Selector
}

func (s Schema) compile() (*compiled, error) {
	if s.ImageAttr == "" {
		return nil, fmt.Errorf("schema: image_attr is required")
	}

	sels := make(map[string]cascadia.Selector, 9)
	for _, f := range s.fields() {
		if f.selector == "" {
			return nil, fmt.Errorf("schema: %s selector is required", f.name)
		}
		sel, err := cascadia.Compile(f.selector)
		if err != nil {
			return nil, fmt.Errorf("schema: invalid %s selector %q: %w", f.name, f.selector, err)
		}
		sels[f.name] = sel
	}

	return &compiled{
		listing:        sels["listing"],
		image:          sels["image"],
		imageAttr:      s.ImageAttr,
		title:          sels["title"],
		description:    sels["description"],
		race:           sels["race"],
		age:            sels["age"],
		length:         sels["length"],
		sellerName:     sels["seller_name"],
		sellerLocation: sels["seller_location"],
	}, nil
}
