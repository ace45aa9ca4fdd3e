package resilience

import (
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostBreakerAllowsHealthyHost(t *testing.T) {
	b := NewHostBreaker(DefaultBreakerConfig())
	require.NoError(t, b.Allow("example.nl"))
	b.Record("example.nl", nil)
	require.NoError(t, b.Allow("example.nl"))
}

func TestHostBreakerSuspendsAfterThreshold(t *testing.T) {
	b := NewHostBreaker(BreakerConfig{FailureThreshold: 3, ResetTimeout: time.Hour})
	failure := eris.New("503")

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Allow("dead.nl"))
		b.Record("dead.nl", failure)
	}

	assert.ErrorIs(t, b.Allow("dead.nl"), ErrHostSuspended)
	assert.True(t, b.Suspended("dead.nl"))

	// Other hosts are unaffected.
	require.NoError(t, b.Allow("healthy.nl"))
}

func TestHostBreakerProbesAfterResetTimeout(t *testing.T) {
	b := NewHostBreaker(BreakerConfig{FailureThreshold: 2, ResetTimeout: time.Minute})
	now := time.Now()
	b.now = func() time.Time { return now }

	failure := eris.New("timeout")
	b.Record("slow.nl", failure)
	b.Record("slow.nl", failure)
	require.Error(t, b.Allow("slow.nl"))

	// Advance past the reset window: exactly one probe gets through.
	now = now.Add(2 * time.Minute)
	require.NoError(t, b.Allow("slow.nl"))
	assert.ErrorIs(t, b.Allow("slow.nl"), ErrHostSuspended)

	// Successful probe closes the breaker.
	b.Record("slow.nl", nil)
	require.NoError(t, b.Allow("slow.nl"))
	assert.False(t, b.Suspended("slow.nl"))
}

func TestHostBreakerFailedProbeRestartsSuspension(t *testing.T) {
	b := NewHostBreaker(BreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute})
	now := time.Now()
	b.now = func() time.Time { return now }

	b.Record("flaky.nl", eris.New("reset"))
	require.Error(t, b.Allow("flaky.nl"))

	now = now.Add(2 * time.Minute)
	require.NoError(t, b.Allow("flaky.nl"))
	b.Record("flaky.nl", eris.New("reset again"))

	assert.ErrorIs(t, b.Allow("flaky.nl"), ErrHostSuspended)
}
