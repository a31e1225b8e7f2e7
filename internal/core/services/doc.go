// Package services implements the driving port interfaces.
// Services contain the navigation and download-reconciliation logic and
// orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no external dependencies beyond the logger.
package services
