// Package extract runs the frame extraction pipeline: probe the source,
// decode frames through ffmpeg, sample them on a time cadence, trim dark
// borders, and retain only frames perceptually distinct from their
// predecessor. Retained frames land in the project directory and the
// sequence store.
package extract
