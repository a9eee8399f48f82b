package router

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twinhost/pkg/directory"
	"twinhost/pkg/registry"
	"twinhost/pkg/session"
	"twinhost/pkg/twin"
	"twinhost/pkg/world"
)

type mockGateway struct {
	mu sync.Mutex

	profile  *twin.Profile
	fetchErr error
	reply    *twin.Reply
	sendErr  error
	clip     []byte
	clipErr  error

	fetchedURLs  []string
	sentEndpoint string
	sentTwinID   string
	sentText     string
	audioURL     string
}

func (g *mockGateway) FetchProfile(ctx context.Context, url string) (*twin.Profile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchedURLs = append(g.fetchedURLs, url)
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	p := *g.profile
	return &p, nil
}

func (g *mockGateway) SendMessage(ctx context.Context, endpoint, twinID, text string) (*twin.Reply, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sentEndpoint, g.sentTwinID, g.sentText = endpoint, twinID, text
	if g.sendErr != nil {
		return nil, g.sendErr
	}
	r := *g.reply
	return &r, nil
}

func (g *mockGateway) FetchAudio(ctx context.Context, url string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.audioURL = url
	return g.clip, g.clipErr
}

type mockNotifier struct {
	mu     sync.Mutex
	infos  []string
	errors []string
	clips  []string
}

func (n *mockNotifier) Info(actor Actor, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, msg)
}

func (n *mockNotifier) Error(actor Actor, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *mockNotifier) Audio(actor Actor, filename string, clip []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.clips = append(n.clips, filename)
}

func (n *mockNotifier) lastInfo() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.infos) == 0 {
		return ""
	}
	return n.infos[len(n.infos)-1]
}

func (n *mockNotifier) lastError() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.errors) == 0 {
		return ""
	}
	return n.errors[len(n.errors)-1]
}

type fixture struct {
	router   *Router
	gateway  *mockGateway
	notifier *mockNotifier
	store    directory.Store
	registry *registry.Registry
	world    *world.MemoryWorld
	loop     *session.Loop
	pool     *session.WorkerPool
	actor    Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		gateway:  &mockGateway{},
		notifier: &mockNotifier{},
		store:    directory.NewFileStore(t.TempDir()),
		registry: registry.New(),
		world:    world.NewMemoryWorld(16),
		loop:     session.NewLoop(64),
		pool:     session.NewWorkerPool(4, time.Second),
	}
	f.router = New(f.store, f.registry, f.gateway, f.world, f.notifier, f.loop, f.pool, "https://host")
	f.actor = Actor{ID: "chan-1"}

	t.Cleanup(func() {
		f.pool.Wait()
		f.loop.Close()
	})
	return f
}

// settle waits for the loop to drain, workers to finish, and their results to
// be applied back on the loop.
func (f *fixture) settle() {
	f.flush()
	f.pool.Wait()
	f.flush()
}

func (f *fixture) flush() {
	done := make(chan struct{})
	f.loop.Submit(func() { close(done) })
	<-done
}

func mayaProfile() *twin.Profile {
	return &twin.Profile{
		Name:        "maya",
		DisplayName: "Maya",
		TwinID:      "twin-maya",
		APIEndpoint: "https://api.example.com/twins/maya/chat",
	}
}

func TestLifecycle_ImportSpawnMessageRemoveList(t *testing.T) {
	f := newFixture(t)
	f.gateway.profile = mayaProfile()
	f.gateway.reply = &twin.Reply{Text: "hi!", AudioLocator: "/clip.mp3"}
	f.gateway.clip = []byte("mp3 bytes")

	// import
	f.router.Import(f.actor, "maya")
	f.settle()

	require.Equal(t, []string{"https://host/api/minecraft/export/username/maya"}, f.gateway.fetchedURLs)
	stored, err := f.store.GetByName("maya")
	require.NoError(t, err)
	assert.Equal(t, "Maya", stored.DisplayName)
	assert.Contains(t, f.notifier.lastInfo(), "Imported Maya")

	// list before spawn
	f.router.List(f.actor)
	f.settle()
	assert.Contains(t, f.notifier.lastInfo(), "Maya (Not spawned)")

	// spawn
	f.router.Spawn(f.actor, "maya")
	f.settle()
	assert.True(t, f.registry.IsLive("maya"))
	assert.Equal(t, 1, f.world.EntityCount())
	assert.Contains(t, f.notifier.lastInfo(), "Spawned Maya")

	f.router.List(f.actor)
	f.settle()
	assert.Contains(t, f.notifier.lastInfo(), "Maya (Spawned)")

	// message
	f.router.Message(f.actor, "maya", "hello")
	f.settle()
	assert.Equal(t, "https://api.example.com/twins/maya/chat", f.gateway.sentEndpoint)
	assert.Equal(t, "twin-maya", f.gateway.sentTwinID)
	assert.Equal(t, "hello", f.gateway.sentText)
	assert.Equal(t, "https://api.example.com/twins/maya/clip.mp3", f.gateway.audioURL)
	assert.Equal(t, "Maya: hi!", f.notifier.lastInfo())
	assert.Equal(t, []string{"maya.mp3"}, f.notifier.clips)

	// remove
	f.router.Remove(f.actor, "maya")
	f.settle()
	assert.False(t, f.registry.IsLive("maya"))
	assert.Equal(t, 0, f.world.EntityCount())
	assert.Contains(t, f.notifier.lastInfo(), "Removed maya")

	// profile outlives the instance
	f.router.List(f.actor)
	f.settle()
	assert.Contains(t, f.notifier.lastInfo(), "Maya (Not spawned)")
}

func TestSpawn_SecondSpawnConflicts(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Upsert(mayaProfile()))

	f.router.Spawn(f.actor, "maya")
	f.router.Spawn(f.actor, "maya")
	f.settle()

	assert.True(t, f.registry.IsLive("maya"))
	assert.Equal(t, 1, f.world.EntityCount(), "conflict must not overwrite the live instance")
	assert.Contains(t, f.notifier.lastError(), "already spawned")
}

func TestSpawn_UnknownTwin(t *testing.T) {
	f := newFixture(t)

	f.router.Spawn(f.actor, "ghost")
	f.settle()

	assert.False(t, f.registry.IsLive("ghost"))
	assert.Contains(t, f.notifier.lastError(), `Twin "ghost" not found`)
}

func TestSpawn_ResourceExhaustion(t *testing.T) {
	f := newFixture(t)
	f.world = world.NewMemoryWorld(1)
	f.router = New(f.store, f.registry, f.gateway, f.world, f.notifier, f.loop, f.pool, "https://host")

	require.NoError(t, f.store.Upsert(mayaProfile()))
	alex := mayaProfile()
	alex.Name, alex.DisplayName = "alex", "Alex"
	require.NoError(t, f.store.Upsert(alex))

	f.router.Spawn(f.actor, "maya")
	f.router.Spawn(f.actor, "alex")
	f.settle()

	// Exhaustion reads differently from "not found".
	assert.Contains(t, f.notifier.lastError(), "Could not spawn Alex")
	assert.NotContains(t, f.notifier.lastError(), "not found")
	assert.False(t, f.registry.IsLive("alex"), "no registry entry on construction failure")
}

func TestRemove_BeforeSpawn(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Upsert(mayaProfile()))

	f.router.Remove(f.actor, "maya")
	f.settle()

	assert.Contains(t, f.notifier.lastError(), "not currently spawned")
}

func TestImport_FailureLeavesDirectoryUnchanged(t *testing.T) {
	f := newFixture(t)
	f.gateway.fetchErr = &twin.NetworkError{Op: "fetch profile", Err: context.DeadlineExceeded}

	f.router.Import(f.actor, "maya")
	f.settle()

	assert.Contains(t, f.notifier.lastError(), "Failed to import twin")

	profiles, err := f.store.ListAll()
	require.NoError(t, err)
	assert.Empty(t, profiles)

	f.router.List(f.actor)
	f.settle()
	assert.Contains(t, f.notifier.lastInfo(), "No twins imported")
}

func TestImport_MalformedResponse(t *testing.T) {
	f := newFixture(t)
	f.gateway.fetchErr = &twin.FormatError{Op: "fetch profile", Reason: "missing twinId"}

	f.router.Import(f.actor, "@maya")
	f.settle()

	// Network and format failures read the same to the user.
	assert.Contains(t, f.notifier.lastError(), "Failed to import twin")
}

func TestMessage_WorksWithoutSpawn(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Upsert(mayaProfile()))
	f.gateway.reply = &twin.Reply{Text: "spawn not required"}

	f.router.Message(f.actor, "maya", "hello")
	f.settle()

	assert.Equal(t, "Maya: spawn not required", f.notifier.lastInfo())
	assert.Empty(t, f.notifier.clips)
}

func TestMessage_UnknownTwin(t *testing.T) {
	f := newFixture(t)

	f.router.Message(f.actor, "ghost", "hello")
	f.settle()

	assert.Contains(t, f.notifier.lastError(), `Twin "ghost" not found`)
}

func TestMessage_RemoteFailureGetsConnectivityHint(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Upsert(mayaProfile()))
	f.gateway.sendErr = &twin.NetworkError{Op: "send message", Err: context.DeadlineExceeded}

	f.router.Message(f.actor, "maya", "hello")
	f.settle()

	assert.Contains(t, f.notifier.lastError(), "Failed to reach Maya")
	assert.Contains(t, f.notifier.lastError(), "twin service")
}

func TestMessage_AbsoluteAudioLocatorUsedVerbatim(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Upsert(mayaProfile()))
	f.gateway.reply = &twin.Reply{Text: "hi", AudioLocator: "https://cdn.example.com/clip.mp3"}
	f.gateway.clip = []byte("mp3")

	f.router.Message(f.actor, "maya", "hello")
	f.settle()

	assert.Equal(t, "https://cdn.example.com/clip.mp3", f.gateway.audioURL)
}

func TestMessage_AudioFailureStillDeliversText(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Upsert(mayaProfile()))
	f.gateway.reply = &twin.Reply{Text: "hi", AudioLocator: "/clip.mp3"}
	f.gateway.clipErr = &twin.NetworkError{Op: "fetch audio", Err: context.DeadlineExceeded}

	f.router.Message(f.actor, "maya", "hello")
	f.settle()

	assert.Equal(t, "Maya: hi", f.notifier.lastInfo())
	assert.Empty(t, f.notifier.clips)
}

func TestDispatch(t *testing.T) {
	f := newFixture(t)
	f.gateway.profile = mayaProfile()
	f.gateway.reply = &twin.Reply{Text: "hi"}

	f.router.Dispatch(f.actor, "import @maya")
	f.settle()
	_, err := f.store.GetByName("maya")
	require.NoError(t, err)

	f.router.Dispatch(f.actor, "spawn maya")
	f.settle()
	assert.True(t, f.registry.IsLive("maya"))

	// message text keeps its spaces
	f.router.Dispatch(f.actor, "message maya how are you")
	f.settle()
	assert.Equal(t, "how are you", f.gateway.sentText)

	f.router.Dispatch(f.actor, "remove maya")
	f.settle()
	assert.False(t, f.registry.IsLive("maya"))
}

func TestDispatch_Validation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]string{
		"":                  "Commands:",
		"import":            "Usage: `import <locator>`",
		"import a b":        "Usage: `import <locator>`",
		"spawn":             "Usage: `spawn <name>`",
		"message maya":      "Usage: `message <name> <text>`",
		"remove":            "Usage: `remove <name>`",
		"teleport maya 0 0": "Unknown command",
	}
	for input, want := range cases {
		f.router.Dispatch(f.actor, input)
		assert.Contains(t, f.notifier.lastError(), want, "input %q", input)
	}
	f.settle()

	// Nothing reached the directory or registry.
	profiles, err := f.store.ListAll()
	require.NoError(t, err)
	assert.Empty(t, profiles)
	assert.Equal(t, 0, f.registry.Len())
}
