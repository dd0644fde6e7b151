// Package logging wires slog with the console and JSON handlers used by the
// framepress CLI and the composition worker.
package logging
