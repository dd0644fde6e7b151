// Package ffprobe shells out to ffprobe to inspect video sources before
// frame extraction.
package ffprobe
