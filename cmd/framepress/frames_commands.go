package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"framepress/internal/project"
	"framepress/internal/sequence"
)

func newFramesCommand(ctx *commandContext) *cobra.Command {
	framesCmd := &cobra.Command{
		Use:   "frames",
		Short: "Inspect and edit a project's frame sequence",
	}

	framesCmd.AddCommand(newFramesListCommand(ctx))
	framesCmd.AddCommand(newFramesMoveCommand(ctx))
	framesCmd.AddCommand(newFramesDeleteCommand(ctx))
	framesCmd.AddCommand(newFramesBreakCommand(ctx))
	return framesCmd
}

func resolveProjectStore(ctx *commandContext, name string) (*project.Project, *sequence.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	proj, err := project.Resolve(cfg, name, false)
	if err != nil {
		return nil, nil, err
	}
	store, err := proj.OpenStore()
	if err != nil {
		return nil, nil, err
	}
	return proj, store, nil
}

func newFramesListCommand(ctx *commandContext) *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the frames in sequence order",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := resolveProjectStore(ctx, projectName)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			frames, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(frames) == 0 {
				fmt.Fprintln(out, "No frames extracted yet")
				return nil
			}

			rows := make([][]string, 0, len(frames))
			for _, frame := range frames {
				rows = append(rows, []string{
					strconv.Itoa(frame.Position),
					frame.Name,
					formatTimestamp(frame.Timestamp),
					yesNo(frame.PageBreakAfter),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "File", "Timestamp", "Break After"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Project to list")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newFramesMoveCommand(ctx *commandContext) *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "move <index> <earlier|later>",
		Short: "Swap a frame with its neighbor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			var dir sequence.Direction
			switch args[1] {
			case "earlier", "up":
				dir = sequence.Earlier
			case "later", "down":
				dir = sequence.Later
			default:
				return fmt.Errorf("direction must be earlier or later, got %q", args[1])
			}

			proj, store, err := resolveProjectStore(ctx, projectName)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var moved bool
			_, err = store.ApplyAndSync(cmd.Context(), proj.Dir, func(seq *sequence.Sequence) error {
				var moveErr error
				moved, moveErr = seq.MoveAdjacent(index, dir)
				return moveErr
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !moved {
				fmt.Fprintf(out, "Frame %d is already at the %s end; nothing moved\n", index, args[1])
				return nil
			}
			fmt.Fprintf(out, "Moved frame %d %s\n", index, dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Project to edit")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newFramesDeleteCommand(ctx *commandContext) *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "delete <indices...>",
		Short: "Delete frames by index (accepts 3, 1,4,7 and 2-5 forms)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indices, err := parseIndexList(args)
			if err != nil {
				return err
			}

			proj, store, err := resolveProjectStore(ctx, projectName)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var removed int
			_, err = store.ApplyAndSync(cmd.Context(), proj.Dir, func(seq *sequence.Sequence) error {
				var delErr error
				removed, delErr = seq.Delete(indices)
				return delErr
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d frame(s); remaining frames renumbered\n", removed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Project to edit")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newFramesBreakCommand(ctx *commandContext) *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "break <indices...>",
		Short: "Toggle page breaks after the given frames",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indices, err := parseIndexList(args)
			if err != nil {
				return err
			}

			proj, store, err := resolveProjectStore(ctx, projectName)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			frames, err := store.ApplyAndSync(cmd.Context(), proj.Dir, func(seq *sequence.Sequence) error {
				return seq.TogglePageBreak(indices)
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			seen := make(map[int]struct{}, len(indices))
			for _, index := range indices {
				if _, done := seen[index]; done {
					continue
				}
				seen[index] = struct{}{}
				if frames[index].PageBreakAfter {
					fmt.Fprintf(out, "Page break set after frame %d\n", index)
				} else {
					fmt.Fprintf(out, "Page break cleared after frame %d\n", index)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Project to edit")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}
