package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"framepress/internal/deps"
	"framepress/internal/project"
	"framepress/internal/sequence"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show tool availability and project summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			statuses = append(statuses, deps.CheckDirectory("Projects dir", cfg.Paths.ProjectsDir))
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				detail := status.Detail
				if status.Available {
					detail = status.Command
				}
				rows = append(rows, []string{status.Name, yesNo(status.Available), detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Dependency", "Available", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				fmt.Fprintf(out, "Missing required tools: %v\n", missing)
			}

			if projectName != "" {
				return printProjectSummary(cmd, ctx, projectName)
			}
			return printProjectIndex(cmd, cfg.Paths.ProjectsDir)
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "Show a single project's details")
	return cmd
}

func printProjectSummary(cmd *cobra.Command, ctx *commandContext, name string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	proj, err := project.Resolve(cfg, name, false)
	if err != nil {
		return err
	}
	store, err := proj.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	frames, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	margins, hasCrop, err := store.CropMargins(cmd.Context())
	if err != nil {
		return err
	}

	breaks := 0
	for _, frame := range frames {
		if frame.PageBreakAfter {
			breaks++
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s (%s)\n", humanizeName(proj.Name), proj.Dir)
	fmt.Fprintf(out, "  Frames:      %d\n", len(frames))
	fmt.Fprintf(out, "  Page breaks: %d\n", breaks)
	if hasCrop {
		fmt.Fprintf(out, "  Crop:        top=%d bottom=%d left=%d right=%d\n",
			margins.Top, margins.Bottom, margins.Left, margins.Right)
	} else {
		fmt.Fprintln(out, "  Crop:        none")
	}
	return nil
}

func printProjectIndex(cmd *cobra.Command, projectsDir string) error {
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var rows [][]string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dbPath := filepath.Join(projectsDir, entry.Name(), sequence.DBName)
		if _, err := os.Stat(dbPath); err != nil {
			continue
		}
		rows = append(rows, []string{entry.Name(), humanizeName(entry.Name())})
	}
	if len(rows) == 0 {
		return nil
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"Project", "Title"},
		rows,
		[]columnAlignment{alignLeft, alignLeft},
	))
	return nil
}
