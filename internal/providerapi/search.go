package providerapi

import (
	"net/url"
	"strconv"

	"medibook/internal/models"
)

// SearchParams enumerates every doctor-search filter explicitly. Zero-valued
// fields are omitted from the query.
type SearchParams struct {
	// Query matches against doctor name, case-insensitive substring.
	Query string
	// Specialty filters to an exact specialty code.
	Specialty string
	// City filters to doctors practicing in the city.
	City string
	// ConsultationType keeps only doctors offering the type; "both" slots
	// count for either.
	ConsultationType models.ConsultationType
	// MaxFee caps the consultation fee, in minor currency units.
	MaxFee int64
	// Page is the zero-based result page.
	Page int
	// PageSize caps results per page; the backend default applies when zero.
	PageSize int
}

// Encode renders the parameters as a query string.
func (p SearchParams) Encode() string {
	q := url.Values{}
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	if p.Specialty != "" {
		q.Set("specialty", p.Specialty)
	}
	if p.City != "" {
		q.Set("city", p.City)
	}
	if p.ConsultationType != "" {
		q.Set("consultation_type", string(p.ConsultationType))
	}
	if p.MaxFee > 0 {
		q.Set("max_fee", strconv.FormatInt(p.MaxFee, 10))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	return q.Encode()
}
