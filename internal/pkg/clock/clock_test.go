//go:build unit

package clock_test

import (
	"testing"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
)

func TestMockClock_AfterFunc(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	t.Run("fires once the deadline is reached", func(t *testing.T) {
		clk := clock.NewMockClock(start)
		fired := 0
		clk.AfterFunc(5*time.Second, func() { fired++ })

		clk.Add(4 * time.Second)
		assert.Equal(t, 0, fired)

		clk.Add(time.Second)
		assert.Equal(t, 1, fired)

		clk.Add(time.Minute)
		assert.Equal(t, 1, fired, "timer must not fire twice")
	})

	t.Run("stopped timer never fires", func(t *testing.T) {
		clk := clock.NewMockClock(start)
		fired := false
		timer := clk.AfterFunc(time.Second, func() { fired = true })

		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop())
		clk.Add(time.Hour)
		assert.False(t, fired)
		assert.Equal(t, 0, clk.PendingTimers())
	})

	t.Run("non-positive duration fires immediately", func(t *testing.T) {
		clk := clock.NewMockClock(start)
		fired := false
		clk.AfterFunc(0, func() { fired = true })
		assert.True(t, fired)
	})

	t.Run("fires in deadline order", func(t *testing.T) {
		clk := clock.NewMockClock(start)
		var order []int
		clk.AfterFunc(3*time.Second, func() { order = append(order, 3) })
		clk.AfterFunc(time.Second, func() { order = append(order, 1) })
		clk.AfterFunc(2*time.Second, func() { order = append(order, 2) })

		clk.Set(start.Add(10 * time.Second))
		assert.Equal(t, []int{1, 2, 3}, order)
	})
}
