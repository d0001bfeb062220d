package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Recorder(t *testing.T) {
	t.Run("Should expose recorded values through the Prometheus handler", func(t *testing.T) {
		r := New()
		r.SetGlobalConvergence(0.75)
		r.SetActiveAgents(4)
		r.SetFileQuality("a.x", 0.9)
		r.RecordDeposit(false)
		r.RecordDeposit(true)
		r.RecordEvaporation()
		r.RecordScaleUp()
		r.RecordScaleDown()

		req := httptest.NewRequest("GET", "/metrics", nil)
		rec := httptest.NewRecorder()
		r.Handler().ServeHTTP(rec, req)
		require.Equal(t, 200, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, "antforge_global_convergence 0.75")
		assert.Contains(t, body, "antforge_active_agents 4")
		assert.Contains(t, body, `antforge_file_best_quality{file_path="a.x"} 0.9`)
		assert.Contains(t, body, "antforge_deposits_total 2")
		assert.Contains(t, body, "antforge_reinforcements_total 1")
		assert.Contains(t, body, "antforge_evaporation_cycles_total 1")
		assert.Contains(t, body, "antforge_scale_up_total 1")
		assert.Contains(t, body, "antforge_scale_down_total 1")
	})

	t.Run("Should no-op on a nil Recorder", func(t *testing.T) {
		var r *Recorder
		assert.NotPanics(t, func() {
			r.SetGlobalConvergence(1)
			r.SetActiveAgents(1)
			r.SetFileQuality("a.x", 1)
			r.RecordDeposit(true)
			r.RecordEvaporation()
			r.RecordScaleUp()
			r.RecordScaleDown()
		})
		req := httptest.NewRequest("GET", "/metrics", nil)
		rec := httptest.NewRecorder()
		r.Handler().ServeHTTP(rec, req)
		assert.Equal(t, 503, rec.Code)
	})
}
