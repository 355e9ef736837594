package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marco/movieFinder/internal/discover"
)

// Updates carries controller snapshots into the Bubble Tea loop. Publish
// never blocks, so it is safe to call from Update itself; only the newest
// undelivered snapshot is kept.
type Updates struct {
	mu      sync.Mutex
	pending *discover.Snapshot

	ready     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewUpdates() *Updates {
	return &Updates{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Publish records s for delivery. It matches discover.Options.OnChange.
func (u *Updates) Publish(s discover.Snapshot) {
	u.mu.Lock()
	if u.pending == nil || s.Version > u.pending.Version {
		u.pending = &s
	}
	u.mu.Unlock()

	select {
	case u.ready <- struct{}{}:
	default:
	}
}

// Next returns a command that waits for the next published snapshot and
// delivers it as a SnapshotMsg. It yields nil once Close is called.
func (u *Updates) Next() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case <-u.ready:
			case <-u.done:
				return nil
			}
			if s := u.take(); s != nil {
				return SnapshotMsg{Snapshot: *s}
			}
		}
	}
}

// Close releases any command blocked in Next.
func (u *Updates) Close() {
	u.closeOnce.Do(func() { close(u.done) })
}

func (u *Updates) take() *discover.Snapshot {
	u.mu.Lock()
	defer u.mu.Unlock()
	s := u.pending
	u.pending = nil
	return s
}
