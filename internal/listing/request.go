package listing

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	// MaxPage keeps (page-1)*perPage inside int
	MaxPage = math.MaxInt / MaxPerPage
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Input is the form state of one filter, e.g. {"location": "US"}. Toggle
// filters carry an empty Input.
type Input map[string]string

// Request is the per-request listing state chosen by the caller.
type Request struct {
	Search    string
	Filters   map[string]Input
	Sort      string
	Direction Direction
	Page      int
	PerPage   int
}

// ParseRequest reads a Request from query parameters:
//
//	search=term&sort=created_at&direction=desc&page=2&per_page=25
//	filter.recent=1                 (toggle filter)
//	filter.location.location=US     (filter with form input)
func ParseRequest(values url.Values) Request {
	req := Request{
		Search:    strings.TrimSpace(values.Get("search")),
		Sort:      values.Get("sort"),
		Direction: Asc,
		Filters:   map[string]Input{},
	}

	if strings.EqualFold(values.Get("direction"), string(Desc)) {
		req.Direction = Desc
	}
	req.Page, _ = strconv.Atoi(values.Get("page"))
	req.PerPage, _ = strconv.Atoi(values.Get("per_page"))

	for key, vals := range values {
		rest, ok := strings.CutPrefix(key, "filter.")
		if !ok || rest == "" || len(vals) == 0 {
			continue
		}

		name, field, hasField := strings.Cut(rest, ".")
		if hasField {
			in, ok := req.Filters[name]
			if !ok {
				in = Input{}
				req.Filters[name] = in
			}
			in[field] = strings.TrimSpace(vals[0])
			continue
		}

		if truthy(vals[0]) {
			if _, ok := req.Filters[name]; !ok {
				req.Filters[name] = Input{}
			}
		}
	}

	return req
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "off", "no":
		return false
	}
	return true
}

func (r Request) pagination() (page, perPage int) {
	page, perPage = r.Page, r.PerPage
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}
