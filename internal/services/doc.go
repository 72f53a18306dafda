// Package services provides the shared error taxonomy and context helpers
// used by every pipeline stage.
package services
