package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"valence/internal/deps"
	"valence/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check media tools, directories and model backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			binaries := preflight.CheckSystemDeps(cmd.Context(), cfg)
			checks := preflight.RunAll(cmd.Context(), cfg)

			if jsonOutput {
				if err := writeJSON(cmd, statusPayload{ConfigPath: ctx.configPath, Dependencies: binaries, Checks: checks}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
				fmt.Fprintln(out)
				renderDependencies(out, binaries, colorize)
				fmt.Fprintln(out)
				renderChecks(out, checks, colorize)
			}

			failed := len(deps.MissingRequired(binaries))
			for _, check := range checks {
				if !check.Passed {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("status: %d check(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit status as JSON")
	return cmd
}

type statusPayload struct {
	ConfigPath   string             `json:"config_path"`
	Dependencies []deps.Status      `json:"dependencies"`
	Checks       []preflight.Result `json:"checks"`
}

func renderDependencies(out io.Writer, statuses []deps.Status, colorize bool) {
	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(out, line)
	}
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		state := "ok"
		switch {
		case !status.Available && status.Optional:
			state = "missing (optional)"
		case !status.Available:
			state = "missing"
		}
		location := status.Path
		if location == "" {
			location = status.Detail
		}
		rows = append(rows, []string{status.Name, state, yesNo(!status.Optional), status.Version, location})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Name", "Status", "Required", "Version", "Location"},
		rows,
		nil,
	))
}

func renderChecks(out io.Writer, results []preflight.Result, colorize bool) {
	for _, line := range renderSectionHeader("Checks", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, result := range results {
		kind := statusOK
		if !result.Passed {
			kind = statusError
		}
		fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
}
