package catalog

import (
	"net/url"
	"strconv"
)

// jsonParam is added to every catalog query so the catalog answers with JSON
// instead of an HTML listing.
const jsonParam = "json"

// Params holds the search parameters of a single catalog query.
//
// Absent attributes are never stored: [Params.Set] ignores empty values, so an
// unset parameter is omitted from the query rather than sent as a placeholder.
type Params map[string]string

// Set stores value under key. Empty values are ignored.
func (p Params) Set(key, value string) {
	if value == "" {
		return
	}
	p[key] = value
}

// SetFloat stores v under key using the shortest decimal representation
// ("2.54", "10000").
func (p Params) SetFloat(key string, v float64) {
	p[key] = strconv.FormatFloat(v, 'f', -1, 64)
}

// Values returns the parameters as URL query values, including json=true.
func (p Params) Values() url.Values {
	v := make(url.Values, len(p)+1)
	for k, val := range p {
		v.Set(k, val)
	}
	v.Set(jsonParam, "true")
	return v
}

// Encode returns the URL-encoded query string with keys in sorted order.
func (p Params) Encode() string {
	return p.Values().Encode()
}

// Signature returns the canonical identifier of a query: the category, a "?",
// and the encoded parameters. Equal signatures always produce equal catalog
// requests.
func Signature(category string, p Params) string {
	return category + "?" + p.Encode()
}
