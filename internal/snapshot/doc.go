// Package snapshot loads page snapshots from disk.
//
// Snapshots are normally produced by a browser-side collector and stored as
// JSON or YAML documents matching model.PageSnapshot. Static HTML files are
// also accepted: they yield the element list (inline styles only, no
// layout) and the structural summary, which is enough for the structure,
// spacing and typography rules.
//
// # Usage
//
//	snap, err := snapshot.LoadFile("home.json")
//	if err != nil {
//	    return err
//	}
//	digest, err := snapshot.Digest(snap)
package snapshot
