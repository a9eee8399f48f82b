// Package router dispatches the five twin commands (import, list, spawn,
// message, remove) across the directory, the live instance registry and the
// remote gateway. Every error is converted into a notification here; nothing
// propagates past this boundary.
package router

import (
	"context"
	"errors"
	"fmt"
	"log"

	"twinhost/pkg/directory"
	"twinhost/pkg/registry"
	"twinhost/pkg/session"
	"twinhost/pkg/twin"
	"twinhost/pkg/world"
)

// Gateway is the network boundary the router talks through.
type Gateway interface {
	FetchProfile(ctx context.Context, url string) (*twin.Profile, error)
	SendMessage(ctx context.Context, endpoint, twinID, text string) (*twin.Reply, error)
	FetchAudio(ctx context.Context, url string) ([]byte, error)
}

// Notifier delivers user-facing output back to the requesting actor.
type Notifier interface {
	Info(actor Actor, msg string)
	Error(actor Actor, msg string)
	Audio(actor Actor, filename string, clip []byte)
}

// Actor is the requesting operator: where replies go and where a spawned
// twin materializes.
type Actor struct {
	ID string
	At world.Locus
}

type Router struct {
	directory  directory.Store
	registry   *registry.Registry
	gateway    Gateway
	world      world.World
	notifier   Notifier
	loop       *session.Loop
	pool       *session.WorkerPool
	exportBase string
}

func New(dir directory.Store, reg *registry.Registry, gw Gateway, w world.World, n Notifier, loop *session.Loop, pool *session.WorkerPool, exportBase string) *Router {
	return &Router{
		directory:  dir,
		registry:   reg,
		gateway:    gw,
		world:      w,
		notifier:   n,
		loop:       loop,
		pool:       pool,
		exportBase: exportBase,
	}
}

// Import resolves the locator, acknowledges immediately, and fetches the
// profile on a worker. The directory is only written on a successful fetch.
func (r *Router) Import(actor Actor, locator string) {
	r.loop.Submit(func() {
		url, err := twin.NormalizeLocator(locator, r.exportBase)
		if err != nil {
			r.notifier.Error(actor, err.Error())
			return
		}

		r.notifier.Info(actor, fmt.Sprintf("Importing twin from %s, this may take a moment...", locator))

		r.pool.Go(func(ctx context.Context) {
			profile, err := r.gateway.FetchProfile(ctx, url)
			if err == nil {
				err = r.directory.Upsert(profile)
			}

			r.loop.Submit(func() {
				if err != nil {
					r.logRemoteFailure("import", locator, err)
					r.notifier.Error(actor, fmt.Sprintf("Failed to import twin: %v", err))
					return
				}
				msg := fmt.Sprintf("Imported %s as %q.", profile.DisplayName, profile.Name)
				if profile.MinecraftUsername != "" {
					msg += fmt.Sprintf(" Skin: %s.", profile.MinecraftUsername)
				}
				r.notifier.Info(actor, msg)
			})
		})
	})
}

// List reports every imported twin with its spawned status.
func (r *Router) List(actor Actor) {
	r.loop.Submit(func() {
		profiles, err := r.directory.ListAll()
		if err != nil {
			log.Printf("Error listing twins: %v", err)
			r.notifier.Error(actor, "Could not read the twin directory.")
			return
		}

		if len(profiles) == 0 {
			r.notifier.Info(actor, "No twins imported yet. Use `import <locator>` to add one.")
			return
		}

		msg := "Imported twins:"
		for _, p := range profiles {
			status := "Not spawned"
			if r.registry.IsLive(p.Name) {
				status = "Spawned"
			}
			msg += fmt.Sprintf("\n• %s (%s)", p.DisplayName, status)
		}
		r.notifier.Info(actor, msg)
	})
}

// Spawn materializes an imported twin at the actor's position. At most one
// live instance per name; a second spawn is rejected, never overwritten.
func (r *Router) Spawn(actor Actor, name string) {
	r.loop.Submit(func() {
		if r.registry.IsLive(name) {
			r.notifier.Error(actor, (&twin.ConflictError{Name: name}).Error())
			return
		}

		profile, err := r.directory.GetByName(name)
		if err != nil {
			r.notifyLookupFailure(actor, name, err)
			return
		}

		entity, err := r.world.SpawnEntity(profile, actor.At)
		if err != nil {
			log.Printf("Error spawning twin %q: %v", name, err)
			r.notifier.Error(actor, fmt.Sprintf("Could not spawn %s: %v", profile.DisplayName, err))
			return
		}

		inst := registry.NewInstance(name, entity, actor.At.Pos)
		if !r.registry.PutIfAbsent(name, inst) {
			entity.Terminate()
			r.notifier.Error(actor, (&twin.ConflictError{Name: name}).Error())
			return
		}

		r.notifier.Info(actor, fmt.Sprintf("Spawned %s! Chat with `message %s <text>`.", profile.DisplayName, name))
	})
}

// Message relays text to the twin's remote endpoint. Spawning is not
// required; any imported twin can chat.
func (r *Router) Message(actor Actor, name, text string) {
	r.loop.Submit(func() {
		profile, err := r.directory.GetByName(name)
		if err != nil {
			r.notifyLookupFailure(actor, name, err)
			return
		}

		r.notifier.Info(actor, fmt.Sprintf("%s is thinking...", profile.DisplayName))

		r.pool.Go(func(ctx context.Context) {
			reply, err := r.gateway.SendMessage(ctx, profile.APIEndpoint, profile.TwinID, text)
			if err != nil {
				r.loop.Submit(func() {
					r.logRemoteFailure("message", name, err)
					r.notifier.Error(actor, fmt.Sprintf("Failed to reach %s: %v. Check that the twin service is up and try again.", profile.DisplayName, err))
				})
				return
			}

			var clip []byte
			if reply.AudioLocator != "" {
				clip = r.fetchReplyAudio(ctx, profile, reply.AudioLocator)
			}

			r.loop.Submit(func() {
				r.notifier.Info(actor, fmt.Sprintf("%s: %s", profile.DisplayName, reply.Text))
				if len(clip) > 0 {
					r.notifier.Audio(actor, name+".mp3", clip)
				}
			})
		})
	})
}

// Remove terminates a live instance and clears its registry entry.
func (r *Router) Remove(actor Actor, name string) {
	r.loop.Submit(func() {
		inst, ok := r.registry.Get(name)
		if !ok || !inst.Live() {
			if ok {
				// Dead leftover entry; clear it while we're here.
				r.registry.Remove(name)
			}
			r.notifier.Error(actor, fmt.Sprintf("Twin %q is not currently spawned.", name))
			return
		}

		inst.Terminate()
		r.notifier.Info(actor, fmt.Sprintf("Removed %s.", name))
	})
}

// fetchReplyAudio resolves and downloads a reply's voice clip. Audio is best
// effort: any failure is logged and the text reply still goes out.
func (r *Router) fetchReplyAudio(ctx context.Context, profile *twin.Profile, locator string) []byte {
	url, err := twin.ResolveAudioURL(profile.APIEndpoint, locator)
	if err != nil {
		log.Printf("Error resolving audio locator %q for twin %q: %v", locator, profile.Name, err)
		return nil
	}

	clip, err := r.gateway.FetchAudio(ctx, url)
	if err != nil {
		log.Printf("Error fetching audio for twin %q: %v", profile.Name, err)
		return nil
	}
	return clip
}

func (r *Router) notifyLookupFailure(actor Actor, name string, err error) {
	var notFound *twin.NotFoundError
	if errors.As(err, &notFound) {
		r.notifier.Error(actor, fmt.Sprintf("Twin %q not found. Import it first with `import %s`.", name, name))
		return
	}
	log.Printf("Error looking up twin %q: %v", name, err)
	r.notifier.Error(actor, "Could not read the twin directory.")
}

// logRemoteFailure keeps the network/format distinction in the logs even
// though the user sees a single failure message.
func (r *Router) logRemoteFailure(op, subject string, err error) {
	var netErr *twin.NetworkError
	var fmtErr *twin.FormatError
	switch {
	case errors.As(err, &netErr):
		log.Printf("Network error during %s %q: %v", op, subject, err)
	case errors.As(err, &fmtErr):
		log.Printf("Format error during %s %q: %v", op, subject, err)
	default:
		log.Printf("Error during %s %q: %v", op, subject, err)
	}
}
