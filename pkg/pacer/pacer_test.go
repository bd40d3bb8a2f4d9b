package pacer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) StatusCode() int { return int(e) }

func TestPacer_Adjusts(t *testing.T) {
	p := New(10, 1, 12, 1, 0.5)
	now := time.Unix(1000, 0)
	p.now = func() time.Time { return now }

	p.Success()
	assert.Equal(t, 11.0, p.Limit())
	p.Success()
	p.Success()
	assert.Equal(t, 12.0, p.Limit(), "capped at max")

	p.Throttled()
	assert.Equal(t, 6.0, p.Limit())
	p.Success()
	assert.Equal(t, 6.0, p.Limit(), "no climb during cooldown")

	now = now.Add(Cooldown + time.Second)
	p.Success()
	assert.Equal(t, 7.0, p.Limit())

	for i := 0; i < 10; i++ {
		p.Throttled()
	}
	assert.Equal(t, 1.0, p.Limit(), "floored at min")
}

func TestPacer_Observe(t *testing.T) {
	p := New(8, 1, 8, 1, 0.5)
	p.Observe(errors.New("bad request"))
	assert.Equal(t, 8.0, p.Limit())

	p.Observe(fmt.Errorf("create: %w", statusErr(429)))
	assert.Equal(t, 4.0, p.Limit())

	p.Observe(statusErr(503))
	assert.Equal(t, 2.0, p.Limit())
}

func TestIsOverload(t *testing.T) {
	assert.True(t, IsOverload(statusErr(429)))
	assert.True(t, IsOverload(statusErr(500)))
	assert.False(t, IsOverload(statusErr(404)))
	assert.False(t, IsOverload(errors.New("plain")))
	assert.False(t, IsOverload(nil))
}

func TestNew_ClampsInitial(t *testing.T) {
	assert.Equal(t, 5.0, New(50, 1, 5, 1, 0.5).Limit())
	assert.Equal(t, 1.0, New(0, 0, 0, 1, 0.5).Limit())
}

func TestPacer_WaitHonoursContext(t *testing.T) {
	p := New(1, 1, 1, 0, 0.5)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Wait(ctx))
}
