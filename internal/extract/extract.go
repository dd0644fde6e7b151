package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"framepress/internal/decode"
	"framepress/internal/imaging"
	"framepress/internal/logging"
	"framepress/internal/media/ffprobe"
	"framepress/internal/project"
	"framepress/internal/sequence"
	"framepress/internal/services"
)

// Options carries the resolved extraction parameters.
type Options struct {
	// Video is the source file to decode.
	Video string
	// Interval is the minimum spacing between sampled frames. Zero samples
	// every decoded frame.
	Interval time.Duration
	// Window bounds extraction to [Start, End) of the source timeline. A
	// zero End means the end of the video.
	Window decode.Window
	// SimilarityThreshold is the SSIM score at or above which a candidate
	// is dropped as a near-duplicate.
	SimilarityThreshold float64
	// CropThreshold is the luma level strictly below which border pixels
	// count as dark.
	CropThreshold int
	FFmpeg        string
	FFprobe       string
}

// Result summarizes a finished extraction run.
type Result struct {
	RunID    string
	Video    string
	Duration time.Duration
	// Processed counts frames that passed the sampler.
	Processed int
	// Retained counts frames written to the sequence.
	Retained int
	// SkippedBlank counts sampled frames dropped because cropping left no
	// content.
	SkippedBlank int
	Elapsed      time.Duration
}

// Run executes the extraction pipeline against a project: probe, decode,
// sample, crop, compare, persist. The project's writer lock is held for the
// duration. An empty sampling window is not an error; it produces a run that
// retained nothing.
func Run(ctx context.Context, logger *slog.Logger, proj *project.Project, opts Options) (Result, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(services.WithStage(ctx, "extract"), runID)
	log := logging.WithContext(ctx, logger)
	result := Result{RunID: runID, Video: opts.Video}
	started := time.Now()

	if _, err := os.Stat(opts.Video); err != nil {
		return result, services.Wrap(services.ErrSourceUnreadable, "extract", "preflight",
			fmt.Sprintf("video %s is not readable", opts.Video), err)
	}

	if err := proj.Lock(); err != nil {
		return result, services.Wrap(services.ErrValidation, "extract", "lock", err.Error(), nil)
	}
	defer func() { _ = proj.Unlock() }()

	store, err := proj.OpenStore()
	if err != nil {
		return result, services.Wrap(services.ErrConfiguration, "extract", "store", "open sequence store", err)
	}
	defer func() { _ = store.Close() }()

	probe, err := ffprobe.Inspect(ctx, opts.FFprobe, opts.Video)
	if err != nil {
		return result, services.Wrap(services.ErrSourceUnreadable, "extract", "probe",
			"probe video", err)
	}
	if _, ok := probe.VideoStream(); !ok {
		return result, services.Wrap(services.ErrSourceUnreadable, "extract", "probe",
			fmt.Sprintf("%s has no video stream", opts.Video), nil)
	}
	result.Duration = time.Duration(probe.DurationSeconds() * float64(time.Second))

	stream, err := decode.OpenStream(ctx, opts.Video, decode.StreamOptions{
		Binary:    opts.FFmpeg,
		FrameRate: probe.FrameRate(),
		Seek:      opts.Window.Start,
		Until:     opts.Window.End,
	})
	if err != nil {
		return result, services.Wrap(services.ErrSourceUnreadable, "extract", "decode",
			"start frame stream", err)
	}
	defer func() { _ = stream.Close() }()

	sampler, err := decode.NewSampler(stream, opts.Interval, opts.Window)
	if err != nil {
		if errors.Is(err, services.ErrEmptyWindow) {
			log.Info("sampling window is empty, nothing to extract",
				logging.Duration("start", opts.Window.Start),
				logging.Duration("end", opts.Window.End))
			result.Elapsed = time.Since(started)
			return result, nil
		}
		return result, err
	}

	comparator := imaging.NewComparator(opts.SimilarityThreshold)
	progress := logging.NewProgressSampler(10)
	span := extractionSpan(result.Duration, opts.Window)
	lastRetained := loadLastRetained(ctx, log, store, proj)

	log.Info("extraction started",
		logging.String("video", opts.Video),
		logging.Duration("interval", opts.Interval),
		logging.Float64("similarity_threshold", comparator.Threshold()),
		logging.Int("crop_threshold", opts.CropThreshold))

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		frame, err := sampler.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, services.Wrap(services.ErrSourceUnreadable, "extract", "decode",
				"read frame stream", err)
		}
		result.Processed++

		cropped, ok := imaging.CropBorders(frame.Image, opts.CropThreshold)
		if !ok {
			result.SkippedBlank++
			log.Debug("frame fully dark after crop, skipped",
				logging.Duration("timestamp", frame.Timestamp))
			continue
		}

		distinct, score := comparator.Distinct(cropped, lastRetained)
		if !distinct {
			log.Debug("near-duplicate dropped",
				logging.Duration("timestamp", frame.Timestamp),
				logging.Float64("score", score))
			continue
		}

		record, err := store.Append(ctx, frame.Timestamp)
		if err != nil {
			return result, services.Wrap(services.ErrConfiguration, "extract", "persist",
				"append frame", err)
		}
		if err := writeFrame(proj.FramePath(record.Name), cropped); err != nil {
			return result, services.Wrap(services.ErrConfiguration, "extract", "persist",
				fmt.Sprintf("write %s", record.Name), err)
		}
		lastRetained = cropped
		result.Retained++

		if percent := spanPercent(frame.Timestamp, opts.Window.Start, span); progress.ShouldLog(percent, "extract") {
			log.Info("extraction progress",
				logging.Float64("percent", percent),
				logging.Int("retained", result.Retained),
				logging.Int("processed", result.Processed))
		}
	}

	result.Elapsed = time.Since(started)
	log.Info("extraction finished",
		logging.Int("processed", result.Processed),
		logging.Int("retained", result.Retained),
		logging.Int("skipped_blank", result.SkippedBlank),
		logging.Duration("elapsed", result.Elapsed))
	return result, nil
}

// loadLastRetained reloads the most recent retained frame so extraction into
// a non-empty project keeps comparing against the true predecessor.
func loadLastRetained(ctx context.Context, log *slog.Logger, store *sequence.Store, proj *project.Project) image.Image {
	frames, err := store.List(ctx)
	if err != nil || len(frames) == 0 {
		return nil
	}
	name := frames[len(frames)-1].Name
	img, err := readFrame(proj.FramePath(name))
	if err != nil {
		log.Warn("could not reload last retained frame",
			logging.String("frame", name),
			logging.Error(err))
		return nil
	}
	return img
}

// extractionSpan is the portion of the timeline the run covers, used only
// for progress percentages.
func extractionSpan(duration time.Duration, window decode.Window) time.Duration {
	end := duration
	if window.Bounded() && window.End < end {
		end = window.End
	}
	span := end - window.Start
	if span <= 0 {
		return 0
	}
	return span
}

func spanPercent(timestamp, start, span time.Duration) float64 {
	if span <= 0 {
		return 0
	}
	percent := float64(timestamp-start) / float64(span) * 100
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

func readFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return png.Decode(f)
}

func writeFrame(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
