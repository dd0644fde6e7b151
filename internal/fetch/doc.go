// Package fetch downloads source videos through yt-dlp.
package fetch
