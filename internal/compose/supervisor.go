package compose

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"framepress/internal/services"
)

var commandContext = exec.CommandContext

// SuperviseOptions configures a supervised composition worker run.
type SuperviseOptions struct {
	// Binary is the executable to spawn, normally the running binary itself.
	Binary string
	// Args is the full worker argument vector.
	Args []string
	// Output is the PDF the worker writes; removed when the run fails.
	Output string
	// Timeout bounds the whole run. Zero means no limit.
	Timeout time.Duration
	// OnProgress receives forwarded worker progress events.
	OnProgress Progress
}

// Supervise runs the composition worker as a child process, streams its
// progress events, and enforces the timeout by killing the worker's whole
// process group. The worker's final result event decides success; a worker
// that dies without one fails with its captured stderr.
func Supervise(ctx context.Context, opts SuperviseOptions) error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := commandContext(ctx, opts.Binary, opts.Args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		// Negative pid addresses the process group, taking any helpers the
		// worker spawned down with it.
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return services.Wrap(services.ErrCompositionFailed, "compose", "supervise", "stdout pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrCompositionFailed, "compose", "supervise", "start worker", err)
	}

	var result *Event
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}
		switch event.Type {
		case eventProgress:
			if opts.OnProgress != nil {
				opts.OnProgress(event.Message, event.Percent)
			}
		case eventResult:
			ev := event
			result = &ev
		}
	}
	scanErr := scanner.Err()
	waitErr := cmd.Wait()

	if err := superviseOutcome(ctx, result, scanErr, waitErr, stderr); err != nil {
		if opts.Output != "" {
			_ = os.Remove(opts.Output)
		}
		return err
	}
	return nil
}

func superviseOutcome(ctx context.Context, result *Event, scanErr, waitErr error, stderr *bytes.Buffer) error {
	if ctx.Err() == context.DeadlineExceeded {
		return services.Wrap(services.ErrTimeout, "compose", "supervise",
			"composition timed out", ctx.Err())
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if result != nil && result.Success && waitErr == nil {
		return nil
	}
	message := "worker exited without a result"
	if result != nil {
		message = result.Message
	}
	var cause error
	switch {
	case waitErr != nil:
		cause = fmt.Errorf("%w: %s", waitErr, stderrTail(stderr))
	case scanErr != nil:
		cause = scanErr
	}
	return services.Wrap(services.ErrCompositionFailed, "compose", "supervise", message, cause)
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
