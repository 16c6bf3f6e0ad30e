package repo

import (
	"testing"
	"time"

	"github.com/tbourn/resume-gate/internal/domain"
)

func TestRequestStats_Empty(t *testing.T) {
	count, pending, latest := RequestStats(nil)
	if count != 0 || pending != 0 || latest != nil {
		t.Fatalf("expected (0, 0, nil), got (%d, %d, %v)", count, pending, latest)
	}
}

func TestRequestStats_CountsAndLatest(t *testing.T) {
	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	t3 := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC) // decision on the older request

	reqs := []domain.DownloadRequest{
		{ID: "a", Status: domain.StatusApproved, RequestedAt: t1, RespondedAt: &t3},
		{ID: "b", Status: domain.StatusPending, RequestedAt: t2},
	}
	count, pending, latest := RequestStats(reqs)
	if count != 2 || pending != 1 {
		t.Fatalf("count/pending = %d/%d", count, pending)
	}
	if latest == nil || !latest.Equal(t3) {
		t.Fatalf("latest = %v; want %v", latest, t3)
	}

	// Mutating the result must not touch the input.
	*latest = time.Time{}
	if !reqs[0].RespondedAt.Equal(t3) {
		t.Fatalf("RequestStats leaked a pointer into the input slice")
	}
}
