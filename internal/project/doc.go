// Package project resolves and guards project directories: the frame files,
// the sequence database, and the single-writer lock live side by side under
// the configured projects root.
package project
