package repo

import (
	"time"

	"github.com/tbourn/resume-gate/internal/domain"
)

// RequestStats returns aggregate metadata used for conditional responses
// (weak ETags on the admin listing): the number of requests, how many are
// still pending, and the most recent RequestedAt/RespondedAt timestamp.
// latest is nil when reqs is empty.
func RequestStats(reqs []domain.DownloadRequest) (count, pending int, latest *time.Time) {
	for i := range reqs {
		r := &reqs[i]
		count++
		if r.IsPending() {
			pending++
		}
		ts := r.RequestedAt
		if r.RespondedAt != nil && r.RespondedAt.After(ts) {
			ts = *r.RespondedAt
		}
		if latest == nil || ts.After(*latest) {
			t := ts
			latest = &t
		}
	}
	return count, pending, latest
}
