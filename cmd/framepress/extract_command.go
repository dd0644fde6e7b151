package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"framepress/internal/decode"
	"framepress/internal/extract"
	"framepress/internal/project"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var (
		projectName   string
		interval      float64
		startSeconds  float64
		endSeconds    float64
		similarity    float64
		cropThreshold int
		deleteSource  bool
	)

	cmd := &cobra.Command{
		Use:   "extract <video>",
		Short: "Extract distinct frames from a video into a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if projectName == "" {
				return fmt.Errorf("--project is required")
			}

			proj, err := project.Resolve(cfg, projectName, true)
			if err != nil {
				return err
			}

			opts := extract.Options{
				Video:               args[0],
				SimilarityThreshold: cfg.Extraction.SimilarityThreshold,
				CropThreshold:       cfg.Extraction.CropThreshold,
				Interval:            secondsToDuration(cfg.Extraction.SampleInterval),
				FFmpeg:              cfg.FFmpegBinary(),
				FFprobe:             cfg.FFprobeBinary(),
			}
			if cmd.Flags().Changed("interval") {
				opts.Interval = secondsToDuration(interval)
			}
			if cmd.Flags().Changed("threshold") {
				opts.SimilarityThreshold = similarity
			}
			if cmd.Flags().Changed("crop-threshold") {
				opts.CropThreshold = cropThreshold
			}
			opts.Window = decode.Window{
				Start: secondsToDuration(startSeconds),
				End:   secondsToDuration(endSeconds),
			}

			result, err := extract.Run(cmd.Context(), logger, proj, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Project: %s (%s)\n", proj.Name, proj.Dir)
			fmt.Fprintf(out, "Processed %d frames, retained %d", result.Processed, result.Retained)
			if result.SkippedBlank > 0 {
				fmt.Fprintf(out, ", skipped %d blank", result.SkippedBlank)
			}
			fmt.Fprintf(out, " in %s\n", result.Elapsed.Round(10*time.Millisecond))

			if deleteSource {
				if err := os.Remove(args[0]); err != nil {
					return fmt.Errorf("remove source video: %w", err)
				}
				fmt.Fprintf(out, "Removed source video %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Project to extract into (created if missing)")
	cmd.Flags().Float64VarP(&interval, "interval", "i", 0, "Sampling interval in seconds (0 samples every frame)")
	cmd.Flags().Float64Var(&startSeconds, "start", 0, "Start of the extraction window in seconds")
	cmd.Flags().Float64Var(&endSeconds, "end", 0, "End of the extraction window in seconds (0 means end of video)")
	cmd.Flags().Float64VarP(&similarity, "threshold", "t", 0, "SSIM threshold at or above which frames are dropped")
	cmd.Flags().IntVar(&cropThreshold, "crop-threshold", 0, "Luma level below which border pixels count as dark")
	cmd.Flags().BoolVar(&deleteSource, "delete-source", false, "Remove the source video after a successful extraction")
	return cmd
}
