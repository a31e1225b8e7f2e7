// Package driving defines the interfaces that user surfaces call IN to core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The CLI and TUI adapters depend on these interfaces, and core services
// implement them.
//
//   - StructureLoader: Load/refresh a course's content structure
//   - UnitNavigator: Page through one sequential's leaf sequence
//   - DownloadManager: Bulk download intents and status snapshots
//   - CompletionReporter: Mark blocks complete with a local guard
//
// Screen-scoped components (the unit navigator) are constructed per
// screen from the current structure rather than held as process-wide
// singletons; the driving interface describes their behaviour, not
// their lifetime.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or service package
package driving
