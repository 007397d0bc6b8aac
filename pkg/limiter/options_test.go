package limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions_Defaults(t *testing.T) {
	t.Parallel()

	o := defaultOptions()
	assert.Equal(t, "limiter:", o.prefix)
	assert.Equal(t, 5*time.Second, o.timeout)
	assert.Equal(t, 10*time.Millisecond, o.minPoll)
	assert.Equal(t, 5*time.Second, o.maxPoll)
	assert.NotNil(t, o.recorder)
}

func TestOptions_Apply(t *testing.T) {
	t.Parallel()

	t.Run("prefix", func(t *testing.T) {
		o := defaultOptions()
		WithPrefix("myapp:rate:")(&o)
		assert.Equal(t, "myapp:rate:", o.prefix)

		WithPrefix("")(&o)
		assert.Equal(t, "myapp:rate:", o.prefix, "empty prefix keeps the previous value")
	})

	t.Run("timeout", func(t *testing.T) {
		o := defaultOptions()
		WithTimeout(2 * time.Second)(&o)
		assert.Equal(t, 2*time.Second, o.timeout)
	})

	t.Run("poll interval", func(t *testing.T) {
		o := defaultOptions()
		WithPollInterval(time.Millisecond, time.Second)(&o)
		assert.Equal(t, time.Millisecond, o.minPoll)
		assert.Equal(t, time.Second, o.maxPoll)
	})

	t.Run("poll interval ignores max below min", func(t *testing.T) {
		o := defaultOptions()
		WithPollInterval(100*time.Millisecond, time.Millisecond)(&o)
		assert.Equal(t, 100*time.Millisecond, o.minPoll)
		assert.Equal(t, 5*time.Second, o.maxPoll)
	})

	t.Run("recorder ignores nil", func(t *testing.T) {
		o := defaultOptions()
		WithRecorder(nil)(&o)
		assert.NotNil(t, o.recorder)
	})
}
