package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("/api/v1/drafts", "2xx")
		ObserveCatalog("get_service", "ok", 0.01)
		IncStaleResult("slots")
	})

	before := testutil.ToFloat64(submissions.WithLabelValues("created"))
	IncSubmission("created")
	assert.Equal(t, before+1, testutil.ToFloat64(submissions.WithLabelValues("created")))

	IncStepTransition("select_pet", "select_employee")
	assert.GreaterOrEqual(t, testutil.ToFloat64(stepTransitions.WithLabelValues("select_pet", "select_employee")), 1.0)

	IncGuardRejection("select_pet")
	assert.GreaterOrEqual(t, testutil.ToFloat64(guardRejections.WithLabelValues("select_pet")), 1.0)
}
