// Package transactions builds the paged server queries for the
// transaction history and unpacks the paged responses. The server is
// the sorting and paging authority: every query it produces pins the
// sort to date descending.
package transactions

import (
	"net/url"
	"strconv"

	"github.com/castellan/foliodash/internal/domain"
)

// DefaultPageSize is the page size used before the user picks one.
const DefaultPageSize = 25

// PageRequest is the logical page the UI wants: a 1-indexed page
// number, a page size, and optional portfolio and inclusive date-range
// scopes. Dates are ISO-8601 strings; they compare correctly as plain
// strings, which is what the range filter relies on.
type PageRequest struct {
	PortfolioID string
	Page        int
	PageSize    int
	DateFrom    string
	DateTo      string
}

// Query is the wire-level query descriptor sent to the transactions
// endpoint. Sort and Order are fixed; the optional fields are omitted
// when empty.
type Query struct {
	Page        int
	Limit       int
	Sort        string
	Order       string
	PortfolioID string
	DateGTE     string
	DateLTE     string
}

// Validate rejects malformed page input before any query is built.
func (r PageRequest) Validate() error {
	if r.Page < 1 {
		return domain.NewValidationError("page must be >= 1, got %d", r.Page)
	}
	if r.PageSize < 1 {
		return domain.NewValidationError("pageSize must be >= 1, got %d", r.PageSize)
	}
	return nil
}

// BuildQuery translates the logical page request into the server query.
// Side-effect-free; performing the request is the transport's job.
func BuildQuery(req PageRequest) (Query, error) {
	if err := req.Validate(); err != nil {
		return Query{}, err
	}
	return Query{
		Page:        req.Page,
		Limit:       req.PageSize,
		Sort:        "date",
		Order:       "desc",
		PortfolioID: req.PortfolioID,
		DateGTE:     req.DateFrom,
		DateLTE:     req.DateTo,
	}, nil
}

// Values encodes the query as URL parameters in json-server style.
func (q Query) Values() url.Values {
	values := url.Values{}
	values.Set("_page", strconv.Itoa(q.Page))
	values.Set("_limit", strconv.Itoa(q.Limit))
	values.Set("_sort", q.Sort)
	values.Set("_order", q.Order)
	if q.PortfolioID != "" {
		values.Set("portfolioId", q.PortfolioID)
	}
	if q.DateGTE != "" {
		values.Set("date_gte", q.DateGTE)
	}
	if q.DateLTE != "" {
		values.Set("date_lte", q.DateLTE)
	}
	return values
}

// Page is one unpacked page of transaction records plus the total
// count the server reported across all pages.
type Page struct {
	Data       []domain.Transaction `json:"data"`
	TotalCount int                  `json:"totalCount"`
}

// UnpackPage combines a page body with the server's total-count
// indicator (the X-Total-Count header value). A missing or malformed
// indicator defaults the count to 0; records are never discarded.
func UnpackPage(records []domain.Transaction, totalCountHeader string) Page {
	if records == nil {
		records = []domain.Transaction{}
	}
	totalCount, err := strconv.Atoi(totalCountHeader)
	if err != nil || totalCount < 0 {
		totalCount = 0
	}
	return Page{Data: records, TotalCount: totalCount}
}
