// Package storage provides JSON-based persistence for game snapshots.
//
// A snapshot records the games seen by one extraction so the next run can report
// only the games that are new. Snapshots are stored per team filter
// (snapshot_<team>.json) plus a combined file for unfiltered runs (snapshot.json).
// The default storage location is ~/.local/share/dfbnet-assist/.
package storage
