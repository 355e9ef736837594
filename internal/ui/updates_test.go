package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marco/movieFinder/internal/discover"
)

func TestUpdatesPublishNeverBlocks(t *testing.T) {
	u := NewUpdates()
	defer u.Close()

	done := make(chan struct{})
	go func() {
		for v := uint64(1); v <= 100; v++ {
			u.Publish(discover.Snapshot{Version: v})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked without a reader")
	}
}

func TestUpdatesDeliversNewestPending(t *testing.T) {
	u := NewUpdates()
	defer u.Close()

	u.Publish(discover.Snapshot{Version: 2, Query: "ba"})
	u.Publish(discover.Snapshot{Version: 3, Query: "bat"})
	u.Publish(discover.Snapshot{Version: 1, Query: "b"})

	msg, ok := u.Next()().(SnapshotMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(3), msg.Snapshot.Version)
	assert.Equal(t, "bat", msg.Snapshot.Query)
}

func TestUpdatesNextWaitsForPublish(t *testing.T) {
	u := NewUpdates()
	defer u.Close()

	got := make(chan any, 1)
	go func() { got <- u.Next()() }()

	select {
	case <-got:
		t.Fatal("next returned before anything was published")
	case <-time.After(20 * time.Millisecond):
	}

	u.Publish(discover.Snapshot{Version: 7})
	select {
	case msg := <-got:
		assert.Equal(t, uint64(7), msg.(SnapshotMsg).Snapshot.Version)
	case <-time.After(time.Second):
		t.Fatal("snapshot not delivered")
	}
}

func TestUpdatesCloseReleasesNext(t *testing.T) {
	u := NewUpdates()

	got := make(chan any, 1)
	go func() { got <- u.Next()() }()

	u.Close()
	u.Close()

	select {
	case msg := <-got:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("next still blocked after close")
	}
}

func TestModelRearmsAfterSnapshot(t *testing.T) {
	u := NewUpdates()
	defer u.Close()
	m := New(&mockController{}, testPosters, u)

	_, cmd := m.Update(loaded(1, nil, nil, ""))
	require.NotNil(t, cmd)

	u.Publish(discover.Snapshot{Version: 2})
	msg, ok := cmd().(SnapshotMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(2), msg.Snapshot.Version)
}
