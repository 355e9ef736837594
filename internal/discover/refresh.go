package discover

import (
	"context"
	"time"
)

// RunAutoRefresh re-dispatches the current query every interval until ctx is
// done. A tick is skipped while the previous fetch is still loading.
func (c *Controller) RunAutoRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	c.logger.Info("auto refresh started", "interval_sec", interval.Seconds())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if c.Snapshot().Loading() {
				c.logger.Warn("auto refresh skipped: previous fetch still running",
					"interval_sec", interval.Seconds(),
					"suggestion", "consider increasing refresh_interval")
				continue
			}
			c.logger.Debug("auto refresh triggered")
			c.Refresh()

		case <-ctx.Done():
			c.logger.Info("auto refresh stopped")
			return

		case <-c.ctx.Done():
			return
		}
	}
}
