// Package imaging implements the raster operations of the extraction
// pipeline: near-black border detection and SSIM frame similarity.
package imaging
