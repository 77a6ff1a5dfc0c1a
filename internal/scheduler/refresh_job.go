package scheduler

import (
	"fmt"

	"github.com/castellan/foliodash/internal/services"
)

// RefreshJob reloads the dashboard dataset on schedule.
type RefreshJob struct {
	refresh *services.RefreshService
}

// NewRefreshJob creates the refresh job.
func NewRefreshJob(refresh *services.RefreshService) *RefreshJob {
	return &RefreshJob{refresh: refresh}
}

// Name returns the job name for logging.
func (j *RefreshJob) Name() string { return "data-refresh" }

// Run performs one refresh cycle. An unclean reload is reported as an
// error so the scheduler logs it; the previous state stays visible.
func (j *RefreshJob) Run() error {
	if !j.refresh.Refresh() {
		return fmt.Errorf("refresh did not complete cleanly")
	}
	return nil
}
