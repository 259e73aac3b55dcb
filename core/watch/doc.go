// Package watch feeds filesystem changes into the hotloading pipeline.
//
// A Watcher observes the OS directories behind every non-writable mount of a
// layered filesystem, maps event paths back to virtual paths and hands them
// to a callback, typically Manager.OnFileChanged. Directories created while
// watching are picked up, so new asset trees hotload without a restart.
//
// # Exclusions
//
//   - The writable cache mount is never watched, so conversion output cannot
//     feed back into invalidation.
//   - Chmod-only events are dropped; they carry no content change.
//
// # Usage
//
//	w, err := watch.New(fs, log, mgr.OnFileChanged)
//	if err != nil {
//		return err
//	}
//	defer w.Close()
//
// The callback runs on the watcher goroutine; Manager.OnFileChanged is safe
// to call from there.
package watch
