package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"silant-backend/internal/apperr"
	"silant-backend/internal/store"
)

// filterParam maps one query parameter onto a store filter.
type filterParam struct {
	param   string
	field   string
	lookup  store.Lookup
	numeric bool
}

func modelNameFilters(models ...string) []filterParam {
	var out []filterParam
	for _, m := range models {
		field := m + "__name"
		out = append(out,
			filterParam{param: field, field: field, lookup: store.LookupExact},
			filterParam{param: field + "__icontains", field: field, lookup: store.LookupIContains},
		)
	}
	return out
}

func idFilter(name string) filterParam {
	return filterParam{param: name, field: name, lookup: store.LookupExact, numeric: true}
}

var serialFilter = filterParam{param: "machine__serial_number", field: "machine__serial_number", lookup: store.LookupExact}

var (
	machineFilters = modelNameFilters(
		"technique_model", "engine_model", "transmission_model", "drive_axle_model", "steering_axle_model",
	)
	maintenanceFilters = []filterParam{idFilter("service_type"), idFilter("service_company"), serialFilter}
	complaintFilters   = []filterParam{
		idFilter("failure_node"), idFilter("recovery_method"), idFilter("service_company"), serialFilter,
	}
)

// pageRequest is the page a listing asked for.
type pageRequest struct {
	number int
	size   int
}

func (p pageRequest) offset() int { return (p.number - 1) * p.size }

// listQuery reads filters, ordering and pagination from the query string.
// Empty filter values are ignored; a non-numeric id filter is rejected.
func (h *Handler) listQuery(c *gin.Context, filters []filterParam) (store.ListQuery, pageRequest, error) {
	values := c.Request.URL.Query()
	var q store.ListQuery

	errs := apperr.Fields{}
	for _, f := range filters {
		raw := strings.TrimSpace(values.Get(f.param))
		if raw == "" {
			continue
		}
		var value any = raw
		if f.numeric {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				errs.Add(f.param, "Select a valid choice. That choice is not one of the available choices.")
				continue
			}
			value = uint(id)
		}
		q.Filters = append(q.Filters, store.Filter{Field: f.field, Lookup: f.lookup, Value: value})
	}
	if len(errs) > 0 {
		return q, pageRequest{}, apperr.Validation(errs)
	}

	for _, term := range strings.Split(values.Get("ordering"), ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		desc := strings.HasPrefix(term, "-")
		q.Orders = append(q.Orders, store.Order{Field: strings.TrimPrefix(term, "-"), Desc: desc})
	}

	p := pageRequest{number: 1, size: h.pageSize}
	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return q, p, invalidPage()
		}
		p.number = n
	}
	if raw := values.Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.size = min(n, h.maxPageSize)
		}
	}
	q.Limit = p.size
	q.Offset = p.offset()
	return q, p, nil
}

func invalidPage() error {
	return &apperr.AppError{Code: apperr.CodeNotFound, Message: "Invalid page.", HTTPStatus: http.StatusNotFound}
}

// pageResponse is the envelope of every scoped listing.
type pageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// respondPage writes one page. Asking for a page past the last one is an
// error, except for the first page of an empty listing.
func respondPage[T any](c *gin.Context, p pageRequest, count int64, results []T) {
	if p.number > 1 && int64(p.offset()) >= count {
		c.Error(invalidPage())
		return
	}
	body := pageResponse[T]{Count: count, Results: results}
	if int64(p.offset()+len(results)) < count {
		next := pageURL(c, p.number+1)
		body.Next = &next
	}
	if p.number > 1 {
		prev := pageURL(c, p.number-1)
		body.Previous = &prev
	}
	c.JSON(http.StatusOK, body)
}

// pageURL is the absolute URL of the same listing at another page.
func pageURL(c *gin.Context, page int) string {
	u := url.URL{
		Scheme: "http",
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		u.Scheme = "https"
	}
	q := c.Request.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
