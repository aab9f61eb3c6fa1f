package lockout

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/authgate/internal/abuse/abuseerr"
	ierrors "github.com/jamesprial/authgate/internal/errors"
)

const key = "alice@example.com|203.0.113.7"

func newTestTracker() (*Tracker, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	return New(Options{Threshold: 5, Window: 15 * time.Minute, Duration: 300 * time.Second, Clock: clock}), clock
}

func TestTracker_LocksAtThreshold(t *testing.T) {
	t.Parallel()

	tr, clock := newTestTracker()

	for i := 0; i < 4; i++ {
		require.NoError(t, tr.Check(key))
		assert.False(t, tr.RecordFailure(key))
		clock.Advance(time.Second)
	}
	require.NoError(t, tr.Check(key))
	assert.True(t, tr.RecordFailure(key), "fifth failure locks")

	err := tr.Check(key)
	require.Error(t, err)
	assert.ErrorIs(t, err, abuseerr.ErrLockedOut)
	assert.ErrorIs(t, err, ierrors.ErrTooManyRequests)
	remaining, ok := ierrors.RetryAfter(err)
	require.True(t, ok)
	assert.Equal(t, 300*time.Second, remaining)
	assert.Zero(t, tr.Failures(key), "crossing the threshold clears failures")
}

func TestTracker_LockExpires(t *testing.T) {
	t.Parallel()

	tr, clock := newTestTracker()
	for i := 0; i < 5; i++ {
		tr.RecordFailure(key)
	}

	clock.Advance(299 * time.Second)
	assert.Error(t, tr.Check(key))

	clock.Advance(time.Second)
	assert.NoError(t, tr.Check(key))

	// A fresh lock needs a full threshold of new failures.
	for i := 0; i < 4; i++ {
		assert.False(t, tr.RecordFailure(key))
	}
	assert.NoError(t, tr.Check(key))
}

func TestTracker_FailuresIgnoredWhileLocked(t *testing.T) {
	t.Parallel()

	tr, clock := newTestTracker()
	for i := 0; i < 5; i++ {
		tr.RecordFailure(key)
	}

	clock.Advance(100 * time.Second)
	assert.False(t, tr.RecordFailure(key))
	assert.Zero(t, tr.Failures(key))

	err := tr.Check(key)
	remaining, _ := ierrors.RetryAfter(err)
	assert.Equal(t, 200*time.Second, remaining, "ignored failures do not extend the lock")
}

func TestTracker_SuccessResets(t *testing.T) {
	t.Parallel()

	tr, _ := newTestTracker()
	for i := 0; i < 4; i++ {
		tr.RecordFailure(key)
	}
	tr.RecordSuccess(key)
	assert.Zero(t, tr.Failures(key))

	for i := 0; i < 4; i++ {
		assert.False(t, tr.RecordFailure(key), "counting restarted after success")
	}
	assert.NoError(t, tr.Check(key))
}

func TestTracker_SuccessClearsActiveLock(t *testing.T) {
	t.Parallel()

	tr, _ := newTestTracker()
	for i := 0; i < 5; i++ {
		tr.RecordFailure(key)
	}
	require.Error(t, tr.Check(key))

	tr.RecordSuccess(key)
	assert.NoError(t, tr.Check(key))
}

func TestTracker_FailuresOutsideWindowDoNotCount(t *testing.T) {
	t.Parallel()

	tr, clock := newTestTracker()
	for i := 0; i < 4; i++ {
		tr.RecordFailure(key)
	}

	clock.Advance(15 * time.Minute)
	assert.False(t, tr.RecordFailure(key))
	assert.Equal(t, 1, tr.Failures(key))
	assert.NoError(t, tr.Check(key))
}

func TestTracker_IndependentKeys(t *testing.T) {
	t.Parallel()

	tr, _ := newTestTracker()
	for i := 0; i < 5; i++ {
		tr.RecordFailure(key)
	}

	assert.Error(t, tr.Check(key))
	assert.NoError(t, tr.Check("alice@example.com|198.51.100.1"))
	assert.NoError(t, tr.Check("bob@example.com|203.0.113.7"))
}

func TestTracker_ConcurrentFailuresLockExactlyOnce(t *testing.T) {
	t.Parallel()

	tr, _ := newTestTracker()

	var locks atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr.Check(key) != nil {
				return
			}
			if tr.RecordFailure(key) {
				locks.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, locks.Load())
	assert.ErrorIs(t, tr.Check(key), abuseerr.ErrLockedOut)
}

func TestTracker_Sweep(t *testing.T) {
	t.Parallel()

	tr := New(Options{Threshold: 2, Window: 20 * time.Millisecond, Duration: 300 * time.Millisecond})

	tr.RecordFailure("short|1")
	tr.RecordFailure("locked|1")
	tr.RecordFailure("locked|1")
	require.Equal(t, 2, tr.Len())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, tr.Sweep(), "failure-only record outlives its window")

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, tr.Sweep(), "lock record outlives its lock")
	assert.Zero(t, tr.Len())
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	tr := New(Options{})
	assert.Equal(t, DefaultThreshold, tr.threshold)
	assert.Equal(t, DefaultWindow, tr.window)
	assert.Equal(t, DefaultDuration, tr.duration)
}
