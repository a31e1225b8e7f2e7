// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CourseAPI: Remote LMS access (structure fetch, enrolments, completion)
//   - StructureStore: Durable course-structure persistence
//   - DownloadStore: Download-record persistence
//   - DownloadRunner: Download execution and status stream
//   - CourseNotifier: Cross-screen event broadcast
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - NetworkMonitor: Connectivity/Wi-Fi detection. Without it the client
//     assumes it is online and the Wi-Fi-only download gate never rejects.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
