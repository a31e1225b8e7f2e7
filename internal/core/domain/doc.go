// Package domain defines the core business entities for Stride.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Block: One node of course content (chapter, sequential, vertical or leaf)
//   - CourseStructure: The flat block graph for one course
//   - DownloadRecord: Local download state for one block
//   - Course events: Cross-screen notifications (structure updated, section changed, ...)
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
