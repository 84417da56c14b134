package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/tarotluna/internal/common"
	"github.com/arcanaland/tarotluna/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past readings and payments",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")
		if page < 0 || limit < 1 {
			return fmt.Errorf("%w: page must be >= 0 and limit >= 1", common.ErrInvalidArgument)
		}
		full, _ := cmd.Flags().GetBool("full")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := loadAccount(ctx, cmd)
		if err != nil {
			return err
		}

		h, err := a.Client.History(ctx, a.Account.UserID(), page, limit)
		if err != nil {
			return fmt.Errorf("error loading history: %w", err)
		}

		out := cmd.OutOrStdout()
		if format != formatText {
			return writeStructured(out, format, h)
		}

		fmt.Fprintf(out, "%s (%d)\n", color.HiWhiteString("Расклады"), h.Total)
		if len(h.Readings) == 0 {
			fmt.Fprintln(out, color.HiBlackString("  Пока нет раскладов"))
		}
		for _, r := range h.Readings {
			premium := ""
			if r.IsPremium {
				premium = color.HiMagentaString(" ★")
			}
			fmt.Fprintf(out, "\n%s %s%s  %s\n", history.ReadingTypeIcon(r.ReadingType),
				history.ReadingTypeName(r.ReadingType), premium, color.HiBlackString(r.When()))
			if r.Question != "" {
				fmt.Fprintf(out, "   %s\n", r.Question)
			}
			if cards := history.ParseCards(r.Cards); len(cards) > 0 {
				fmt.Fprintf(out, "   %s\n", color.CyanString(strings.Join(cards, " · ")))
			}
			if full && r.Response != "" {
				for _, line := range strings.Split(r.Response, "\n") {
					fmt.Fprintf(out, "   %s\n", line)
				}
			}
		}

		if len(h.Payments) > 0 {
			fmt.Fprintf(out, "\n%s\n", color.HiWhiteString("Платежи"))
		}
		for _, p := range h.Payments {
			label, status := history.PaymentStatus(p.Status)
			switch status {
			case history.StatusPaid:
				label = color.GreenString(label)
			case history.StatusPending:
				label = color.YellowString(label)
			case history.StatusFailed:
				label = color.RedString(label)
			}
			fmt.Fprintf(out, "  %8.2f ₽  %-14s %s  %s\n", p.Amount, common.FormatRequests(p.Requests), label, color.HiBlackString(p.Timestamp))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(historyCmd)
	addFormatFlag(historyCmd)

	historyCmd.Flags().Int("page", 0, "Page number, starting at 0")
	historyCmd.Flags().Int("limit", 10, "Readings per page")
	historyCmd.Flags().Bool("full", false, "Include the interpretation text")
}
