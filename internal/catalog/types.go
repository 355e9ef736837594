package catalog

// Movie represents a movie record returned by the catalog API.
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	VoteAverage      float64 `json:"vote_average"`
	PosterPath       string  `json:"poster_path"`
	ReleaseDate      string  `json:"release_date"`
	OriginalLanguage string  `json:"original_language"`
}

// DiscoverResponse is the body shared by the search and discover endpoints.
// Response and Error are only set when the API reports a logical failure.
type DiscoverResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
	Response     string  `json:"Response,omitempty"`
	Error        string  `json:"Error,omitempty"`
}

// Failed reports whether the body carries the logical failure flag.
func (r *DiscoverResponse) Failed() bool {
	return r.Response == "False"
}
