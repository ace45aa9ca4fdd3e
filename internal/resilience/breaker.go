package resilience

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrHostSuspended is returned when fetches to a host are rejected
// because the host's breaker is open.
var ErrHostSuspended = eris.New("resilience: host suspended after repeated failures")

// BreakerConfig controls when a host is suspended and when it is probed again.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before the
	// host is suspended. Default: 5.
	FailureThreshold int

	// ResetTimeout is how long a host stays suspended before a single
	// probe fetch is allowed through. Default: 60s.
	ResetTimeout time.Duration
}

// DefaultBreakerConfig returns the breaker configuration used for scrape runs.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     60 * time.Second,
	}
}

type hostState struct {
	failures    int
	suspendedAt time.Time
	probing     bool
}

// HostBreaker suspends fetches to hosts that keep failing, so one dead
// site cannot burn the retry budget of an entire run. Safe for
// concurrent use.
type HostBreaker struct {
	cfg   BreakerConfig
	mu    sync.Mutex
	hosts map[string]*hostState
	now   func() time.Time
}

// NewHostBreaker creates a breaker with the given config, applying
// defaults for zero values.
func NewHostBreaker(cfg BreakerConfig) *HostBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 60 * time.Second
	}
	return &HostBreaker{
		cfg:   cfg,
		hosts: make(map[string]*hostState),
		now:   time.Now,
	}
}

// Allow reports whether a fetch to host may proceed. While suspended it
// returns ErrHostSuspended until ResetTimeout has passed, then lets a
// single probe through.
func (b *HostBreaker) Allow(host string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.hosts[host]
	if !ok || st.failures < b.cfg.FailureThreshold {
		return nil
	}

	if b.now().Sub(st.suspendedAt) < b.cfg.ResetTimeout {
		return ErrHostSuspended
	}
	if st.probing {
		return ErrHostSuspended
	}
	st.probing = true
	return nil
}

// Record updates the host's failure count after a fetch. A success
// resets the host; a failure past the threshold suspends it.
func (b *HostBreaker) Record(host string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.hosts[host]
	if !ok {
		st = &hostState{}
		b.hosts[host] = st
	}

	if err == nil {
		if st.failures >= b.cfg.FailureThreshold {
			zap.L().Info("host recovered", zap.String("host", host))
		}
		st.failures = 0
		st.probing = false
		return
	}

	st.probing = false
	st.failures++
	if st.failures == b.cfg.FailureThreshold {
		st.suspendedAt = b.now()
		zap.L().Warn("suspending host after repeated failures",
			zap.String("host", host),
			zap.Int("failures", st.failures),
		)
	} else if st.failures > b.cfg.FailureThreshold {
		// Failed probe: restart the suspension window.
		st.suspendedAt = b.now()
	}
}

// Suspended reports whether the host is currently suspended.
func (b *HostBreaker) Suspended(host string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.hosts[host]
	if !ok || st.failures < b.cfg.FailureThreshold {
		return false
	}
	return b.now().Sub(st.suspendedAt) < b.cfg.ResetTimeout
}
