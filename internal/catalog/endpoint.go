package catalog

import (
	"net/url"
	"strings"
)

const (
	searchPath   = "/search/movie"
	discoverPath = "/discover/movie"
)

// Endpoint describes a catalog request target relative to the base URL.
type Endpoint struct {
	Path   string
	Params url.Values
}

// EndpointFor selects the endpoint for a query: a text search when query is
// non-empty, otherwise discovery sorted by descending popularity.
func EndpointFor(query string) Endpoint {
	if query != "" {
		return Endpoint{
			Path:   searchPath,
			Params: url.Values{"query": {query}},
		}
	}
	return Endpoint{
		Path:   discoverPath,
		Params: url.Values{"sort_by": {"popularity.desc"}},
	}
}

// IsSearch reports whether the endpoint is the text search endpoint.
func (e Endpoint) IsSearch() bool {
	return e.Path == searchPath
}

// URL joins the endpoint onto baseURL.
func (e Endpoint) URL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/") + e.Path
	if len(e.Params) > 0 {
		u += "?" + e.Params.Encode()
	}
	return u
}
