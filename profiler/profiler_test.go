package profiler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAccumulates(t *testing.T) {
	tr := NewTracker()
	tr.Record("decode", 30*time.Millisecond)
	tr.Record("plist", time.Millisecond)
	tr.Record("decode", 10*time.Millisecond)

	stages := tr.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, Stage{Name: "decode", Count: 2, Total: 40 * time.Millisecond, Min: 10 * time.Millisecond, Max: 30 * time.Millisecond}, stages[0])
	assert.Equal(t, 20*time.Millisecond, stages[0].Average())
	assert.Equal(t, "plist", stages[1].Name)
	assert.Equal(t, "plist: 1ms", stages[1].String())
	assert.Zero(t, Stage{}.Average())
}

func TestTrackIsConcurrencySafe(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stop := tr.Track("decode")
			stop()
		}()
	}
	wg.Wait()

	stages := tr.Stages()
	require.Len(t, stages, 1)
	assert.Equal(t, int64(50), stages[0].Count)
	assert.LessOrEqual(t, stages[0].Min, stages[0].Max)
}
