package discover

import "github.com/marco/movieFinder/internal/catalog"

// OpState is the lifecycle of one fetch operation within a dispatch.
type OpState int

const (
	Idle OpState = iota
	Loading
	Succeeded
	Failed
)

func (s OpState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Status tracks the all-movies and trending operations independently.
type Status struct {
	AllMovies OpState
	Trending  OpState
}

// Loading is true while either operation is in flight.
func (s Status) Loading() bool {
	return s.AllMovies == Loading || s.Trending == Loading
}

// Snapshot is an immutable copy of the controller state.
type Snapshot struct {
	// Version increases with every change; consumers drop older snapshots.
	Version        uint64
	Query          string
	DebouncedQuery string
	Movies         []catalog.Movie
	Trending       []catalog.Movie
	Status         Status
	ErrorMessage   string
}

// Loading reports the visible loading flag.
func (s Snapshot) Loading() bool {
	return s.Status.Loading()
}
