package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"framepress/internal/imaging"
)

func newCropCommand(ctx *commandContext) *cobra.Command {
	cropCmd := &cobra.Command{
		Use:   "crop",
		Short: "Manage the uniform composition-time crop",
	}

	cropCmd.AddCommand(newCropSetCommand(ctx))
	cropCmd.AddCommand(newCropShowCommand(ctx))
	cropCmd.AddCommand(newCropClearCommand(ctx))
	return cropCmd
}

func newCropSetCommand(ctx *commandContext) *cobra.Command {
	var (
		projectName              string
		top, bottom, left, right int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the margins trimmed from every frame during composition",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, v := range []int{top, bottom, left, right} {
				if v < 0 {
					return fmt.Errorf("crop margins must not be negative")
				}
			}
			_, store, err := resolveProjectStore(ctx, projectName)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			margins := imaging.Margins{Top: top, Bottom: bottom, Left: left, Right: right}
			if err := store.SetCropMargins(cmd.Context(), margins); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Crop set: top=%d bottom=%d left=%d right=%d\n",
				top, bottom, left, right)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Project to configure")
	_ = cmd.MarkFlagRequired("project")
	cmd.Flags().IntVar(&top, "top", 0, "Pixels trimmed from the top edge")
	cmd.Flags().IntVar(&bottom, "bottom", 0, "Pixels trimmed from the bottom edge")
	cmd.Flags().IntVar(&left, "left", 0, "Pixels trimmed from the left edge")
	cmd.Flags().IntVar(&right, "right", 0, "Pixels trimmed from the right edge")
	return cmd
}

func newCropShowCommand(ctx *commandContext) *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the configured crop",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := resolveProjectStore(ctx, projectName)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			margins, ok, err := store.CropMargins(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "No crop configured; frames compose at full size")
				return nil
			}
			fmt.Fprintf(out, "Crop: top=%d bottom=%d left=%d right=%d\n",
				margins.Top, margins.Bottom, margins.Left, margins.Right)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Project to inspect")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newCropClearCommand(ctx *commandContext) *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the configured crop",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := resolveProjectStore(ctx, projectName)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.ClearCropMargins(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Crop cleared")
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Project to configure")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}
