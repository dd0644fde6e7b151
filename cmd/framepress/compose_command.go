package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"framepress/internal/compose"
	"framepress/internal/logging"
	"framepress/internal/project"
	"framepress/internal/sequence"
	"framepress/internal/services"
)

func newComposeCommand(ctx *commandContext) *cobra.Command {
	var (
		projectName    string
		output         string
		orientation    string
		preview        bool
		timeoutSeconds int
	)

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Compose the project's frames into a paginated PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			proj, err := project.Resolve(cfg, projectName, false)
			if err != nil {
				return err
			}
			if err := proj.Lock(); err != nil {
				return err
			}
			defer func() { _ = proj.Unlock() }()

			orientationValue := cfg.Composition.Orientation
			if cmd.Flags().Changed("orientation") {
				orientationValue = orientation
			}
			if _, err := compose.ParseOrientation(orientationValue); err != nil {
				return err
			}
			if output == "" {
				output = filepath.Join(proj.Dir, proj.Name+".pdf")
			}
			timeout := time.Duration(cfg.Composition.TimeoutSeconds) * time.Second
			if cmd.Flags().Changed("timeout") {
				timeout = time.Duration(timeoutSeconds) * time.Second
			}

			self, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate own binary: %w", err)
			}

			workerArgs := []string{
				"compose-worker",
				"--project-dir", proj.Dir,
				"--output", output,
				"--orientation", orientationValue,
				"--scale", strconv.FormatFloat(cfg.Composition.FrameScale, 'f', -1, 64),
				"--spacing", strconv.Itoa(cfg.Composition.FrameSpacing),
			}
			dpi := cfg.Composition.RenderDPI
			if preview {
				dpi = cfg.Composition.PreviewDPI
				workerArgs = append(workerArgs, "--preview")
			}
			workerArgs = append(workerArgs, "--dpi", strconv.Itoa(dpi))
			if configPath := cmd.Flags().Lookup("config"); configPath != nil && configPath.Changed {
				workerArgs = append(workerArgs, "--config", configPath.Value.String())
			}

			log := logging.NewComponentLogger(logger, "compose")
			progress := logging.NewProgressSampler(10)
			err = compose.Supervise(cmd.Context(), compose.SuperviseOptions{
				Binary:  self,
				Args:    workerArgs,
				Output:  output,
				Timeout: timeout,
				OnProgress: func(message string, percent float64) {
					if progress.ShouldLog(percent, "compose") {
						log.Info("composition progress",
							logging.String("message", message),
							logging.Float64("percent", percent))
					}
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Project to compose")
	_ = cmd.MarkFlagRequired("project")
	cmd.Flags().StringVarP(&output, "output", "o", "", "PDF output path (defaults to <project>/<name>.pdf)")
	cmd.Flags().StringVar(&orientation, "orientation", "", "Page orientation: portrait or landscape")
	cmd.Flags().BoolVar(&preview, "preview", false, "Render a fast low-resolution preview")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "Composition timeout in seconds (0 uses the configured value)")
	return cmd
}

func newComposeWorkerCommand(ctx *commandContext) *cobra.Command {
	var (
		projectDir  string
		output      string
		orientation string
		preview     bool
		dpi         int
		scale       float64
		spacing     int
	)

	cmd := &cobra.Command{
		Use:         "compose-worker",
		Hidden:      true,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			err := runComposeWorker(cmd, projectDir, output, orientation, preview, dpi, scale, spacing)
			if err != nil {
				compose.EmitResult(stdout, false, services.Message(err))
				return err
			}
			compose.EmitResult(stdout, true, "composition complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&projectDir, "project-dir", "", "Project directory")
	cmd.Flags().StringVar(&output, "output", "", "PDF output path")
	cmd.Flags().StringVar(&orientation, "orientation", "portrait", "Page orientation")
	cmd.Flags().BoolVar(&preview, "preview", false, "Low-resolution preview mode")
	cmd.Flags().IntVar(&dpi, "dpi", 150, "Page raster resolution")
	cmd.Flags().Float64Var(&scale, "scale", 0.95, "Frame scale factor")
	cmd.Flags().IntVar(&spacing, "spacing", 10, "Vertical gap between frames in pixels")
	return cmd
}

func runComposeWorker(cmd *cobra.Command, projectDir, output, orientationValue string, preview bool, dpi int, scale float64, spacing int) error {
	orientationParsed, err := compose.ParseOrientation(orientationValue)
	if err != nil {
		return err
	}
	if projectDir == "" || output == "" {
		return fmt.Errorf("--project-dir and --output are required")
	}

	store, err := sequence.Open(projectDir)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	frames, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	margins, _, err := store.CropMargins(cmd.Context())
	if err != nil {
		return err
	}

	paths := make([]string, len(frames))
	breaks := make([]bool, len(frames))
	for i, frame := range frames {
		paths[i] = filepath.Join(projectDir, frame.Name)
		breaks[i] = frame.PageBreakAfter
	}

	stdout := cmd.OutOrStdout()
	return compose.Run(cmd.Context(), compose.Job{
		FramePaths:  paths,
		Breaks:      breaks,
		Output:      output,
		Crop:        margins,
		Orientation: orientationParsed,
		DPI:         dpi,
		Preview:     preview,
		Scale:       scale,
		Spacing:     spacing,
	}, func(message string, percent float64) {
		compose.EmitProgress(stdout, message, percent)
	})
}
