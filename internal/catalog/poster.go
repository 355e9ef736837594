package catalog

import "strings"

const (
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	DefaultPlaceholder  = "./no-movie.png"
)

// PosterResolver builds poster image sources for movies.
type PosterResolver struct {
	BaseURL     string
	Placeholder string
}

// URL returns the CDN URL for the movie poster, or the placeholder when the
// movie has no poster path.
func (r PosterResolver) URL(m Movie) string {
	if m.PosterPath == "" {
		if r.Placeholder == "" {
			return DefaultPlaceholder
		}
		return r.Placeholder
	}
	base := r.BaseURL
	if base == "" {
		base = DefaultImageBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(m.PosterPath, "/")
}
