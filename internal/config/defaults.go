package config

const (
	defaultProjectsDir   = "~/.local/share/framepress/projects"
	defaultLogDir        = "~/.local/share/framepress/logs"
	defaultVideoCacheDir = "~/.cache/framepress/videos"

	defaultSimilarityThreshold = 0.95
	defaultCropThreshold       = 30
	defaultSampleInterval      = 1.5

	defaultOrientation    = "portrait"
	defaultFrameScale     = 0.95
	defaultFrameSpacing   = 10
	defaultComposeTimeout = 600
	defaultRenderDPI      = 150
	defaultPreviewDPI     = 72

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ProjectsDir:   defaultProjectsDir,
			LogDir:        defaultLogDir,
			VideoCacheDir: defaultVideoCacheDir,
		},
		Extraction: Extraction{
			SimilarityThreshold: defaultSimilarityThreshold,
			CropThreshold:       defaultCropThreshold,
			SampleInterval:      defaultSampleInterval,
		},
		Composition: Composition{
			Orientation:    defaultOrientation,
			FrameScale:     defaultFrameScale,
			FrameSpacing:   defaultFrameSpacing,
			TimeoutSeconds: defaultComposeTimeout,
			RenderDPI:      defaultRenderDPI,
			PreviewDPI:     defaultPreviewDPI,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
			YtDlp:   "yt-dlp",
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
