// Package backup keeps copies of snapshot files before packidx overwrites
// them.
//
// Each backed up file gets its own directory below the backup root, named
// after the file's base name and a short hash of its absolute path. Every
// backup is a timestamped directory holding the copy and a manifest.yaml
// with the SHA-256 of the copy:
//
//	<root>/packs.yaml-1a2b3c4d/20261018T101500.000000/packs.yaml
//	<root>/packs.yaml-1a2b3c4d/20261018T101500.000000/manifest.yaml
//
// Restore verifies the hash before writing the copy back. Only the newest
// backups up to the retention count are kept.
package backup
