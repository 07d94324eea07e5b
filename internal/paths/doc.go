// Package paths resolves where packidx keeps its configuration, catalog
// snapshots and logs.
//
// All locations follow the XDG Base Directory layout via github.com/adrg/xdg:
//
//	| Purpose  | Location                        |
//	|----------|---------------------------------|
//	| Config   | <ConfigHome>/packidx/config.yaml |
//	| Catalogs | <DataHome>/packidx/packs/         |
//	| Logs     | <CacheHome>/packidx/logs/        |
//
// Tests that override XDG_* variables must call xdg.Reload afterwards.
package paths
