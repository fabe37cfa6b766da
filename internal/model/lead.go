// Package model defines the records that flow through the lead pipeline.
package model

// NotAvailable marks an optional field the upstream provider did not supply.
const NotAvailable = "N/A"

// Candidate is a business returned by a place search, before enrichment.
type Candidate struct {
	PlaceID string `json:"place_id"`
	Name    string `json:"name"`
}

// PlaceDetail holds the enriched attributes of a Candidate.
type PlaceDetail struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Website string  `json:"website"`
	Rating  float64 `json:"rating"`
	Reviews int     `json:"reviews"`
}

// DefaultPlaceDetail returns a PlaceDetail with every field at its
// missing-data default.
func DefaultPlaceDetail() PlaceDetail {
	return PlaceDetail{
		Phone:   NotAvailable,
		Website: NotAvailable,
	}
}

// HasWebsite reports whether the detail carries a usable website URL.
func (d PlaceDetail) HasWebsite() bool {
	return d.Website != "" && d.Website != NotAvailable
}

// Lead is a business annotated with its SEO score and sales category.
// Field order here is the column order of every tabular export.
type Lead struct {
	Business string   `json:"business" csv:"business" yaml:"business"`
	Industry string   `json:"industry" csv:"industry" yaml:"industry"`
	Location string   `json:"location" csv:"location" yaml:"location"`
	Website  string   `json:"website" csv:"website" yaml:"website"`
	Phone    string   `json:"phone" csv:"phone" yaml:"phone"`
	SEOScore int      `json:"seo_score" csv:"seo_score" yaml:"seo_score"`
	Category Category `json:"category" csv:"category" yaml:"category"`
	Issues   string   `json:"issues" csv:"issues" yaml:"issues"`
	Rating   float64  `json:"rating" csv:"rating" yaml:"rating"`
	Reviews  int      `json:"reviews" csv:"reviews" yaml:"reviews"`
}

// LeadColumns is the fixed export column order.
var LeadColumns = []string{
	"business",
	"industry",
	"location",
	"website",
	"phone",
	"seo_score",
	"category",
	"issues",
	"rating",
	"reviews",
}

// NewLead assembles a Lead from one evaluated candidate. The business name
// comes from the detail record, falling back to the search result name.
func NewLead(industry, location string, c Candidate, d PlaceDetail, a SeoAssessment) Lead {
	name := d.Name
	if name == "" {
		name = c.Name
	}
	return Lead{
		Business: name,
		Industry: industry,
		Location: location,
		Website:  d.Website,
		Phone:    d.Phone,
		SEOScore: a.Score,
		Category: Classify(a.Score),
		Issues:   a.Joined(),
		Rating:   d.Rating,
		Reviews:  d.Reviews,
	}
}
