package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"framepress/internal/fetch"
	"framepress/internal/logging"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var destDir string

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download a video with yt-dlp",
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

			dest := destDir
			if dest == "" {
				dest = cfg.Paths.VideoCacheDir
			}

			log := logging.NewComponentLogger(logger, "fetch")
			progress := logging.NewProgressSampler(10)
			client := fetch.NewCLI(fetch.WithBinary(cfg.YtDlpBinary()))
			path, err := client.Download(cmd.Context(), args[0], dest, func(update fetch.ProgressUpdate) {
				if progress.ShouldLog(update.Percent, "fetch") {
					log.Info("download progress", logging.Float64("percent", update.Percent))
				}
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&destDir, "dest", "d", "", "Destination directory (defaults to the video cache)")
	return cmd
}
