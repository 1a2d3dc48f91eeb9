package engine

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	require.Equal(t, "ok", outcome(nil))
	require.Equal(t, "invalid", outcome(validationErrorf("users", "email", RuleUnique, "taken")))
	require.Equal(t, "not_found", outcome(notFound(testUsers, "ada")))
	require.Equal(t, "error", outcome(errors.New("disk full")))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	m.observeOperation("users", "create", nil)
}

func TestDatabaseMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	db, dir := openTestDatabase(t, DefaultOptions().WithRegisterer(reg))

	_, err := db.Create(testUsers, ada())
	require.NoError(t, err)
	_, err = db.Create(testUsers, ada())
	require.Error(t, err)
	_, err = db.FetchOne(testUsers, "bea", true)
	require.Error(t, err)

	ops := db.metrics.Operations
	require.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("users", "create", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("users", "create", "invalid")))
	require.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("users", "fetch_one", "not_found")))
	require.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues("comments", "initialize", "ok")))

	require.Equal(t, 2, testutil.CollectAndCount(db.metrics.StorageSeconds))

	// the collectors are already registered on reg
	_, err = Open(dir, nil, DefaultOptions().WithRegisterer(reg))
	require.Error(t, err)
}
