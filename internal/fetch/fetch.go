package fetch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"framepress/internal/services"
)

var commandContext = exec.CommandContext

// ProgressUpdate captures download progress events.
type ProgressUpdate struct {
	Percent float64
	Message string
}

// Client defines video download behaviour.
type Client interface {
	Download(ctx context.Context, url, destDir string, progress func(ProgressUpdate)) (string, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the yt-dlp command-line downloader.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "yt-dlp"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// progressLine matches yt-dlp's default download progress output.
var progressLine = regexp.MustCompile(`\[download\]\s+([0-9.]+)%`)

// Download fetches the video at url into destDir and returns the downloaded
// file's path. yt-dlp picks the final name; the client reads it back from
// the --print after_move marker on stdout.
func (c *CLI) Download(ctx context.Context, url, destDir string, progress func(ProgressUpdate)) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", errors.New("url required")
	}
	if strings.TrimSpace(destDir) == "" {
		return "", errors.New("destination directory required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}

	args := []string{
		"--newline",
		"--no-playlist",
		"--print", "after_move:filepath",
		"--no-simulate",
		"-o", filepath.Join(destDir, "%(title)s.%(ext)s"),
		url,
	}
	cmd := commandContext(ctx, c.binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start yt-dlp: %w", err)
	}

	var downloadedPath string
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if match := progressLine.FindStringSubmatch(line); match != nil {
			if progress != nil {
				percent, _ := strconv.ParseFloat(match[1], 64)
				progress(ProgressUpdate{Percent: percent, Message: line})
			}
			continue
		}
		// The after_move print is a bare absolute path on its own line.
		if filepath.IsAbs(line) {
			downloadedPath = line
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read yt-dlp output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "fetch", "download",
			fmt.Sprintf("yt-dlp failed for %s", url), err)
	}
	if downloadedPath == "" {
		return "", services.Wrap(services.ErrExternalTool, "fetch", "download",
			"yt-dlp reported no output file", nil)
	}
	return downloadedPath, nil
}

var _ Client = (*CLI)(nil)
