package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/models"
	"github.com/wfunc/bugg-bot/internal/repository"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var page, pageSize int
	cmd := &cobra.Command{
		Use:   "history <player>",
		Short: "查询玩家战绩",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.Services.History == nil {
				return apperr.New(apperr.ErrNotImplemented, "未配置数据库或未开启战绩记录")
			}

			ctx := cmd.Context()
			rows, p, err := a.Services.History.List(ctx, args[0], page, pageSize)
			if err != nil {
				return err
			}
			stats, err := a.Services.History.Stats(ctx, args[0])
			if err != nil {
				return err
			}
			if c.asJSON {
				return writeJSON(cmd, map[string]interface{}{
					"records":    rows,
					"pagination": p,
					"stats":      stats,
				})
			}
			return writeHistory(cmd, rows, p, stats)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "页码")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "每页条数")
	return cmd
}

func writeHistory(cmd *cobra.Command, rows []*models.GameRecord, p *repository.Pagination, s *models.PlayerStats) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: played=%d wins=%d losses=%d draws=%d abandoned=%d\n",
		s.Player, s.Played, s.Wins, s.Losses, s.Draws, s.Abandoned)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ENDED\tKIND\tPLAYERS\tRESULT\tMOVES")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			r.EndedAt.Format("2006-01-02 15:04"), r.Kind, strings.Join(r.Players, ","), outcome(r), r.Moves)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "page %d/%d (total %d)\n", p.Page, p.Pages(), p.Total)
	return err
}

func outcome(r *models.GameRecord) string {
	switch {
	case r.Winner != "":
		return "winner " + r.Winner
	case r.Draw:
		return "draw"
	case r.Abandoned:
		return "abandoned (" + r.Reason + ")"
	default:
		return "-"
	}
}
