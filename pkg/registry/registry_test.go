package registry

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twinhost/pkg/world"
)

type fakeEntity struct {
	id         string
	terminated atomic.Bool
}

func (e *fakeEntity) ID() string { return e.id }
func (e *fakeEntity) Terminate() { e.terminated.Store(true) }

func newTestInstance(name string) (*Instance, *fakeEntity) {
	entity := &fakeEntity{id: "entity-" + name}
	return NewInstance(name, entity, world.Position{}), entity
}

func TestPutIfAbsent_RejectsSecondLiveInstance(t *testing.T) {
	reg := New()

	first, _ := newTestInstance("maya")
	second, _ := newTestInstance("maya")

	assert.True(t, reg.PutIfAbsent("maya", first))
	assert.False(t, reg.PutIfAbsent("maya", second))
	assert.True(t, reg.IsLive("maya"))

	got, ok := reg.Get("maya")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestPutIfAbsent_ConcurrentSpawnsExactlyOneWins(t *testing.T) {
	reg := New()

	const n = 50
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inst, _ := newTestInstance("maya")
			if reg.PutIfAbsent("maya", inst) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.True(t, reg.IsLive("maya"))
	assert.Equal(t, 1, reg.Len())
}

func TestTerminate_DeregistersAndReleasesEntity(t *testing.T) {
	reg := New()

	inst, entity := newTestInstance("maya")
	require.True(t, reg.PutIfAbsent("maya", inst))

	inst.Terminate()

	assert.True(t, entity.terminated.Load())
	assert.False(t, reg.IsLive("maya"))
	_, ok := reg.Get("maya")
	assert.False(t, ok, "termination must clear the registry entry")

	// Idempotent
	inst.Terminate()
	assert.Equal(t, 0, reg.Len())
}

func TestPutIfAbsent_ReplacesDeadEntry(t *testing.T) {
	reg := New()

	dead, _ := newTestInstance("maya")
	require.True(t, reg.PutIfAbsent("maya", dead))

	// Simulate a self-terminated instance whose entry lingers: drop the hook
	// path by re-inserting the entry after termination.
	dead.Terminate()
	reg.instances["maya"] = dead
	assert.False(t, reg.IsLive("maya"), "entry exists but instance is dead")

	fresh, _ := newTestInstance("maya")
	assert.True(t, reg.PutIfAbsent("maya", fresh), "dead entry must not block re-spawn")
	assert.True(t, reg.IsLive("maya"))
}

func TestTerminate_DoesNotEvictReplacement(t *testing.T) {
	reg := New()

	old, _ := newTestInstance("maya")
	require.True(t, reg.PutIfAbsent("maya", old))
	reg.Remove("maya")

	fresh, _ := newTestInstance("maya")
	require.True(t, reg.PutIfAbsent("maya", fresh))

	// The stale instance terminating later must not remove the new entry.
	old.Terminate()
	assert.True(t, reg.IsLive("maya"))
}
