// Command framepress extracts the visually distinct frames of a video and
// composes them into a paginated PDF.
package main
