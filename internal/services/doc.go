// Package services provides the shared error taxonomy and context
// annotations used across the extraction and composition stages.
package services
