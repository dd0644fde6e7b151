// Package decode iterates a video's frames through an ffmpeg image2pipe
// stream and applies temporal sampling within an optional time window.
package decode
