package observability

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWorkflowCounters_RegisteredAndCounting(t *testing.T) {
	base := testutil.ToFloat64(Decisions.WithLabelValues("approve", "applied"))
	Decisions.WithLabelValues("approve", "applied").Inc()
	if got := testutil.ToFloat64(Decisions.WithLabelValues("approve", "applied")); got != base+1 {
		t.Fatalf("decisions counter = %v; want %v", got, base+1)
	}

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	seen := map[string]bool{}
	for _, mf := range mfs {
		if strings.HasPrefix(mf.GetName(), "resumegate_") {
			seen[mf.GetName()] = true
		}
	}
	if !seen["resumegate_decisions_total"] {
		t.Fatalf("resumegate_decisions_total not exported; have %v", seen)
	}

	// Vectors without observations are not gathered, so check registration
	// directly: registering again must report AlreadyRegistered.
	for _, c := range []prometheus.Collector{RequestsSubmitted, Downloads, Notifications, StoreErrors} {
		err := prometheus.Register(c)
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			t.Fatalf("collector not registered: %v", err)
		}
	}
}
