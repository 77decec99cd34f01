package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestRecorders(t *testing.T) {
	before := counterValue(t, Logins.WithLabelValues("github", "ok"))
	RecordLogin("github", "ok")
	require.Equal(t, before+1, counterValue(t, Logins.WithLabelValues("github", "ok")))

	before = counterValue(t, TokenRejections.WithLabelValues("expired"))
	RecordTokenRejection("expired")
	require.Equal(t, before+1, counterValue(t, TokenRejections.WithLabelValues("expired")))

	before = counterValue(t, Reconciles.WithLabelValues("merged"))
	RecordReconcile("merged")
	require.Equal(t, before+1, counterValue(t, Reconciles.WithLabelValues("merged")))
}
