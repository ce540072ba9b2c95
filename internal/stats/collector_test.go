package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	const goroutines = 100
	const opsPerGoroutine = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				c.AddFiles(1)
				c.AddDirs(1)
				c.AddLinks(1)
				c.AddOthers(1)
				c.AddUIDChanges(1)
				c.AddGIDChanges(1)
				c.AddWarnings(1)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	expected := int64(goroutines * opsPerGoroutine)
	assert.Equal(t, expected, s.Files)
	assert.Equal(t, expected, s.Dirs)
	assert.Equal(t, expected, s.Links)
	assert.Equal(t, expected, s.Others)
	assert.Equal(t, expected, s.UIDChanges)
	assert.Equal(t, expected, s.GIDChanges)
	assert.Equal(t, expected, s.Warnings)
}

func TestSnapshotString(t *testing.T) {
	s := Snapshot{
		Files:      10,
		Dirs:       3,
		Links:      2,
		Others:     1,
		UIDChanges: 4,
		GIDChanges: 5,
		Warnings:   1,
	}
	expected := "files=10 dirs=3 links=2 others=1 uid_changes=4 gid_changes=5 warnings=1"
	assert.Equal(t, expected, s.String())
}

func TestElapsedZeroValue(t *testing.T) {
	var c Collector
	assert.Zero(t, c.Elapsed())
}
