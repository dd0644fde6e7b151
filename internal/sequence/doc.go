// Package sequence persists the ordered set of retained frames for a
// project. Frames carry dense zero-based positions that are reassigned on
// every structural edit; page-break flags ride on frame identity so they
// follow a frame through moves and deletions. The SQLite store and the
// frame_NNNNNN.png files in the project directory are kept index-aligned.
package sequence
