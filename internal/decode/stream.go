package decode

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os/exec"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// fallbackFrameRate is used to synthesize timestamps when the container does
// not report one.
const fallbackFrameRate = 30.0

// StreamOptions configures an ffmpeg frame stream.
type StreamOptions struct {
	// Binary is the ffmpeg executable. Defaults to "ffmpeg".
	Binary string
	// FrameRate is the source frame rate from ffprobe, used to derive each
	// frame's timestamp.
	FrameRate float64
	// Seek trims decoding to start at this source offset. Timestamps of
	// emitted frames remain source-relative.
	Seek time.Duration
	// Until stops decoding at this source offset, when positive.
	Until time.Duration
}

// Stream decodes a video into successive PNG frames piped from ffmpeg.
// It implements Source.
type Stream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	reader *bufio.Reader
	stderr *bytes.Buffer

	fps    float64
	offset time.Duration
	index  int
	closed bool
}

// OpenStream launches ffmpeg decoding the video at path into an image2pipe
// PNG stream. The returned error only covers process launch; decode errors
// surface from Next.
func OpenStream(ctx context.Context, path string, opts StreamOptions) (*Stream, error) {
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("open stream: empty path")
	}

	cmd := commandContext(ctx, binary, streamArgs(path, opts)...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	fps := opts.FrameRate
	if fps <= 0 {
		fps = fallbackFrameRate
	}
	return &Stream{
		cmd:    cmd,
		stdout: stdout,
		reader: bufio.NewReaderSize(stdout, 1<<20),
		stderr: stderr,
		fps:    fps,
		offset: opts.Seek,
	}, nil
}

// Next decodes the next frame from the pipe. It returns io.EOF once ffmpeg
// finishes cleanly; a non-zero ffmpeg exit surfaces as an error carrying the
// captured diagnostic text.
func (s *Stream) Next() (RawFrame, error) {
	if s.closed {
		return RawFrame{}, io.EOF
	}
	if _, err := s.reader.Peek(1); err != nil {
		return RawFrame{}, s.finish(err)
	}
	img, err := png.Decode(s.reader)
	if err != nil {
		return RawFrame{}, s.finish(err)
	}
	timestamp := s.offset + time.Duration(float64(s.index)/s.fps*float64(time.Second))
	s.index++
	return RawFrame{Image: img, Timestamp: timestamp}, nil
}

// finish waits for ffmpeg after the pipe drains or breaks and converts the
// outcome to io.EOF or a diagnostic error.
func (s *Stream) finish(cause error) error {
	s.closed = true
	waitErr := s.cmd.Wait()
	if waitErr != nil {
		return fmt.Errorf("ffmpeg decode failed: %w: %s", waitErr, stderrTail(s.stderr))
	}
	if errors.Is(cause, io.EOF) || errors.Is(cause, io.ErrUnexpectedEOF) {
		return io.EOF
	}
	return fmt.Errorf("decode frame %d: %w", s.index, cause)
}

// Close terminates ffmpeg if it is still running.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	_ = s.stdout.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return nil
}

func streamArgs(path string, opts StreamOptions) []string {
	args := []string{"-v", "error", "-nostdin", "-i", path}
	if opts.Seek > 0 {
		args = append(args, "-ss", formatSeconds(opts.Seek))
	}
	if opts.Until > 0 {
		args = append(args, "-to", formatSeconds(opts.Until))
	}
	return append(args, "-f", "image2pipe", "-c:v", "png", "-")
}

func stderrTail(buf *bytes.Buffer) string {
	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "no diagnostic output"
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, " | ")
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
