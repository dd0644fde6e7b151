package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"framepress/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rows := [][]string{
				{"paths.projects_dir", cfg.Paths.ProjectsDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"paths.video_cache_dir", cfg.Paths.VideoCacheDir},
				{"extraction.similarity_threshold", fmt.Sprintf("%.2f", cfg.Extraction.SimilarityThreshold)},
				{"extraction.crop_threshold", fmt.Sprintf("%d", cfg.Extraction.CropThreshold)},
				{"extraction.sample_interval", fmt.Sprintf("%.2fs", cfg.Extraction.SampleInterval)},
				{"composition.orientation", cfg.Composition.Orientation},
				{"composition.frame_scale", fmt.Sprintf("%.2f", cfg.Composition.FrameScale)},
				{"composition.frame_spacing", fmt.Sprintf("%d", cfg.Composition.FrameSpacing)},
				{"composition.timeout_seconds", fmt.Sprintf("%d", cfg.Composition.TimeoutSeconds)},
				{"composition.render_dpi", fmt.Sprintf("%d", cfg.Composition.RenderDPI)},
				{"composition.preview_dpi", fmt.Sprintf("%d", cfg.Composition.PreviewDPI)},
				{"tools.ffmpeg", cfg.FFmpegBinary()},
				{"tools.ffprobe", cfg.FFprobeBinary()},
				{"tools.ytdlp", cfg.YtDlpBinary()},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Setting", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
