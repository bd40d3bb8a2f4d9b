package jobmgr

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) report(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, s)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func TestManager_OneJobPerName(t *testing.T) {
	rec := &recorder{}
	m := NewManager(context.Background(), rec.report)

	release := make(chan struct{})
	require.NoError(t, m.Start("sync:1", func(ctx context.Context) error {
		<-release
		return nil
	}))
	err := m.Start("sync:1", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrRunning)
	assert.Equal(t, []string{"sync:1"}, m.List())
	assert.Equal(t, "Running jobs: sync:1", m.Status())

	close(release)
	m.Wait()
	assert.Empty(t, m.List())
	assert.Equal(t, "No jobs are running.", m.Status())
	assert.Equal(t, []string{"running:sync:1", "done:sync:1"}, rec.all())

	require.NoError(t, m.Start("sync:1", func(context.Context) error { return errors.New("boom") }))
	m.Wait()
	assert.Contains(t, rec.all(), "error:sync:1:boom")
}

func TestManager_Stop(t *testing.T) {
	m := NewManager(context.Background(), nil)
	require.NoError(t, m.Start("a", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	assert.True(t, m.Stop("a"))
	assert.False(t, m.Stop("a"))

	// The name is free again before the stopped job returns.
	require.NoError(t, m.Start("a", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}))
	assert.Equal(t, []string{"a"}, m.List())
	m.StopAll()
	m.Wait()
	assert.Empty(t, m.List())
}

func TestManager_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(ctx, nil)
	for _, name := range []string{"b", "a"} {
		require.NoError(t, m.Start(name, func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}))
	}
	assert.Equal(t, []string{"a", "b"}, m.List())
	cancel()
	m.Wait()
	assert.Empty(t, m.List())
}
