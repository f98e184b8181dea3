// Package manager owns prepared translators and coordinates access to them.
// It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, catalog getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: instance key and state types.
//   - errors.go: error types and helpers (IsTooBusy, IsModelNotFound).
//   - admission.go: per-instance queueing; one generation in flight per translator.
//   - ensure.go: EnsureInstance prepares translators on first use.
//   - evict.go: LRU eviction when MaxInstances is reached.
//   - translate.go: Translate entry point streaming NDJSON results.
//   - status_report.go: Status/Snapshot reporting helpers.
//   - unload.go: graceful drain and removal of an instance.
//   - sanity.go: backend reachability check.
//
// A translator.Translator must never be used from two goroutines at once.
// The admission queue is what makes sharing one across HTTP requests safe.
package manager
