package server

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"rental-dashboard/services"
)

// Export formats of the chart endpoint.
const (
	formatJSON = "json"
	formatPNG  = "png"
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

// parseParams reads widget values from the query string. Absent values stay
// unselected; present but malformed numbers are rejected.
func parseParams(q url.Values) (services.Params, *ParamError) {
	p := services.Params{
		Beds:     strings.TrimSpace(q.Get("beds")),
		Type:     strings.TrimSpace(q.Get("type")),
		Province: strings.TrimSpace(q.Get("province")),
	}

	for _, v := range q["lease_term"] {
		for _, term := range strings.Split(v, ",") {
			if term = strings.TrimSpace(term); term != "" {
				p.LeaseTerms = append(p.LeaseTerms, term)
			}
		}
	}

	var perr *ParamError
	if p.PriceMin, perr = parseFloatParam(q, "price_min"); perr != nil {
		return p, perr
	}
	if p.PriceMax, perr = parseFloatParam(q, "price_max"); perr != nil {
		return p, perr
	}

	if raw := strings.TrimSpace(q.Get("bins")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			return p, &ParamError{Field: "bins", Value: raw, Message: "must be an integer between 1 and 500"}
		}
		p.Bins = n
	}
	return p, nil
}

func parseFloatParam(q url.Values, field string) (*float64, *ParamError) {
	raw := strings.TrimSpace(q.Get(field))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &ParamError{Field: field, Value: raw, Message: "must be a number"}
	}
	return &v, nil
}

func parseFormat(q url.Values) (string, bool) {
	f := strings.ToLower(strings.TrimSpace(q.Get("format")))
	switch f {
	case "":
		return formatJSON, true
	case formatJSON, formatPNG, formatCSV, formatXLSX:
		return f, true
	}
	return f, false
}

// encodeParams is the inverse of parseParams, used to build image links.
func encodeParams(p services.Params) url.Values {
	q := url.Values{}
	if p.Beds != "" {
		q.Set("beds", p.Beds)
	}
	if p.Type != "" {
		q.Set("type", p.Type)
	}
	if p.Province != "" {
		q.Set("province", p.Province)
	}
	for _, t := range p.LeaseTerms {
		q.Add("lease_term", t)
	}
	if p.PriceMin != nil {
		q.Set("price_min", strconv.FormatFloat(*p.PriceMin, 'f', -1, 64))
	}
	if p.PriceMax != nil {
		q.Set("price_max", strconv.FormatFloat(*p.PriceMax, 'f', -1, 64))
	}
	if p.Bins > 0 {
		q.Set("bins", strconv.Itoa(p.Bins))
	}
	return q
}
