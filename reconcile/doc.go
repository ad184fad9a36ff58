// Package reconcile brings a local directory tree into agreement with a
// manifest.
//
// A run walks the manifest depth-first against the local tree. At every
// level below the root it deletes local entries the manifest does not name,
// keeps files whose content already matches their declared digest, and
// spawns a fetch task for every other file. Directories the manifest names
// are created before recursing into them.
//
// The root directory is exempt from deletion: it is usually a shared folder
// (a game directory, say) holding data the manifest knows nothing about.
// Because root-level entries are never inspected, files declared directly at
// the root are fetched on every run.
//
// Fetch tasks run concurrently with the walk and with each other. The first
// failure of any task or of the walk cancels the rest and is returned from
// Run; a run either converges completely or reports an error.
package reconcile
