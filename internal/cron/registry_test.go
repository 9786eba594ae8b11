package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrder(t *testing.T) {
	sweep := &stubJob{name: "settlement-sweep"}
	retention := &stubJob{name: "outbox-retention"}
	registry, err := NewRegistry(sweep)
	require.NoError(t, err)
	require.NoError(t, registry.Register(retention))

	jobs := registry.Jobs()
	require.Equal(t, []Job{sweep, retention}, jobs)
	require.Equal(t, []string{"settlement-sweep", "outbox-retention"}, registry.Names())

	jobs[0] = nil
	require.Equal(t, sweep, registry.Jobs()[0], "callers must not mutate the registry")
}

func TestRegistryRejectsBadJobs(t *testing.T) {
	sweep := &stubJob{name: "settlement-sweep"}

	_, err := NewRegistry(sweep, nil, &stubJob{name: "  "}, &stubJob{name: "settlement-sweep"})
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	require.Contains(t, errs[0].Error(), "nil")
	require.Contains(t, errs[1].Error(), "name required")
	require.Contains(t, errs[2].Error(), `"settlement-sweep" already registered`)

	var registry Registry
	require.NoError(t, registry.Register(sweep))
	require.Error(t, registry.Register(&stubJob{name: "settlement-sweep"}))
	require.Len(t, registry.Jobs(), 1)
}

func mustRegistry(t *testing.T, jobs ...Job) *Registry {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	require.NoError(t, err)
	return registry
}
