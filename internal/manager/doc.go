// Package manager owns the lifecycle of the process-wide database connection
// and gates store-dependent requests on its readiness. It is structured into
// small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: Config and package defaults; NewWithConfig applies defaults.
//   - types.go: Phase and the internal Snapshot view.
//   - errors.go: error types and helpers (IsNotReady, IsConfiguration, IsConnectError).
//   - connect.go: Connect, Start and the single in-flight attempt.
//   - retry.go: the fixed-interval background retry timer.
//   - gate.go: Admit, the request gate used by the HTTP layer.
//   - status_report.go: Status/Snapshot reporting helpers.
//   - events.go, eventpub_memory.go: lifecycle event publishing.
//   - metrics.go: Prometheus collectors for phase and attempts.
//
// Phases move Disconnected -> Connecting -> Connected, or Connecting -> Failed
// -> (retry) -> Connecting. Connected is sticky: there is no health polling
// loop. A handle that reports unhealthy is noticed on the next Connect or
// Admit call, which reconnects.
//
// External packages should treat Manager as the single owner of the store
// handle and go through Connect, Admit, Handle and Status only.
package manager
