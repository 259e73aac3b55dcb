// Package texture provides the deduplicating texture cache and the
// asynchronous loading pipeline built on top of it.
//
// A Manager owns every texture entity in the process. Requesting the same
// path with the same sampler twice returns the same *Texture, so a handle
// uploaded once is shared by every consumer. Entities start out showing a
// grey placeholder and move through a small state machine as they load.
//
// # Loading
//
// A texture can be demanded immediately with TryLoad, which loads a cached
// artifact synchronously if one is usable and otherwise queues a
// high-priority conversion. Prefetch instead marks the entity for
// background loading: each Advance call performs one unit of work, polling
// the converter, starting high-priority conversions before prefetch ones,
// and probing prefetch caches in between. Conversion failures substitute a
// magenta error placeholder rather than leaving the entity stuck.
//
// # Caching
//
// Two caches are consulted before converting: an archive artifact stored
// next to the source (shipped with mod archives), and a loose artifact
// under the cache mount whose name fingerprints the source file and its
// conversion settings. Editing a source file or a settings descriptor
// changes the fingerprint, so stale loose artifacts are simply never
// referenced again.
//
// # Hotloading
//
// The Manager tracks which files each entity depends on: its source image
// and every settings descriptor along its directory ancestry. OnFileChanged
// resets the affected entities to the placeholder and drops cached
// descriptor state; consumers re-request textures as usual and pick up the
// new contents.
//
// # Usage
//
//	m, err := texture.NewManager(fs, c, log)
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//
//	t := m.GetOrCreate(texture.NewProperties("textures/terrain/grass.png"))
//	t.Prefetch()
//	for m.Advance() {
//	}
package texture
