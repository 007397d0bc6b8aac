package limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimit_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts positive parameters", func(t *testing.T) {
		assert.NoError(t, Limit{Capacity: 10, Rate: 10}.Validate())
		assert.NoError(t, Limit{Capacity: 0.5, Rate: 100.0 / 60}.Validate())
	})

	t.Run("rejects zero capacity", func(t *testing.T) {
		assert.ErrorIs(t, Limit{Capacity: 0, Rate: 1}.Validate(), ErrInvalidCapacity)
	})

	t.Run("rejects negative capacity", func(t *testing.T) {
		assert.ErrorIs(t, Limit{Capacity: -3, Rate: 1}.Validate(), ErrInvalidCapacity)
	})

	t.Run("rejects zero rate", func(t *testing.T) {
		assert.ErrorIs(t, Limit{Capacity: 1, Rate: 0}.Validate(), ErrInvalidRate)
	})

	t.Run("rejects negative rate", func(t *testing.T) {
		assert.ErrorIs(t, Limit{Capacity: 1, Rate: -0.1}.Validate(), ErrInvalidRate)
	})
}

func TestLimit_Window(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second, Limit{Capacity: 5, Rate: 5}.Window())
	assert.Equal(t, time.Minute, Limit{Capacity: 100, Rate: 100.0 / 60}.Window())
	assert.Equal(t, 100*time.Millisecond, Limit{Capacity: 1, Rate: 10}.Window())
}

func TestStateTTL(t *testing.T) {
	t.Parallel()

	t.Run("uses refill time when in range", func(t *testing.T) {
		assert.Equal(t, 600*time.Second, stateTTL(Limit{Capacity: 600, Rate: 1}))
	})

	t.Run("rounds fractional refill time up", func(t *testing.T) {
		// 100 / 1.5 = 66.67s -> 67s
		assert.Equal(t, 67*time.Second, stateTTL(Limit{Capacity: 100, Rate: 1.5}))
	})

	t.Run("clamps to the floor for high rates", func(t *testing.T) {
		assert.Equal(t, minStateTTL, stateTTL(Limit{Capacity: 10, Rate: 1000}))
	})

	t.Run("clamps to the ceiling for low rates", func(t *testing.T) {
		assert.Equal(t, maxStateTTL, stateTTL(Limit{Capacity: 1e6, Rate: 0.001}))
	})
}
