package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wfunc/bugg-bot/internal/artifact"
)

func newArtifactCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "神器状态与交互",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "查看神器当前状态",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := c.open(cmd)
				if err != nil {
					return err
				}
				defer a.Close()
				return c.writeView(cmd, a.Services.Artifact.Status(cmd.Context()), "")
			},
		},
		&cobra.Command{
			Use:   "touch",
			Short: "触摸神器",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := c.open(cmd)
				if err != nil {
					return err
				}
				defer a.Close()
				res, err := a.Services.Artifact.Touch(cmd.Context())
				if err != nil {
					return err
				}
				if c.asJSON {
					return writeJSON(cmd, res)
				}
				return c.writeView(cmd, res.View, res.Response)
			},
		},
		&cobra.Command{
			Use:   "disturb",
			Short: "扰动神器（有冷却）",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := c.open(cmd)
				if err != nil {
					return err
				}
				defer a.Close()
				res, err := a.Services.Artifact.Disturb(cmd.Context())
				if err != nil {
					return err
				}
				if c.asJSON {
					return writeJSON(cmd, res)
				}
				return c.writeView(cmd, res.View, fmt.Sprintf("[%s] %s", res.Outcome, res.Response))
			},
		},
		&cobra.Command{
			Use:   "report <category>",
			Short: "上报一次使用（neutral|gambling|market|night）",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := c.open(cmd)
				if err != nil {
					return err
				}
				defer a.Close()
				view, err := a.Services.Artifact.ReportUsage(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.writeView(cmd, view, "")
			},
		},
	)
	return cmd
}

func (c *cli) writeView(cmd *cobra.Command, v artifact.View, note string) error {
	if c.asJSON {
		return writeJSON(cmd, v)
	}
	out := cmd.OutOrStdout()
	if note != "" {
		fmt.Fprintln(out, note)
	}
	fmt.Fprintf(out, "%s (%d 天)\n", v.Name, v.AgeDays)
	fmt.Fprintf(out, "mood: %s [%s]\n", v.Mood, strings.Join(v.Traits, ", "))
	fmt.Fprintf(out, "chaos=%d greed=%d shadow=%d\n", v.Stats.Chaos, v.Stats.Greed, v.Stats.Shadow)
	_, err := fmt.Fprintf(out, "appearance: color=%s points=%d radius=%d\n",
		v.Appearance.Color, v.Appearance.Points, v.Appearance.Radius)
	return err
}
