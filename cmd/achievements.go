package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arcanaland/tarotluna/internal/achievements"
	"github.com/arcanaland/tarotluna/internal/app"
	"github.com/arcanaland/tarotluna/internal/common"
	"github.com/arcanaland/tarotluna/internal/host"
)

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show your achievements",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := loadAccount(ctx, cmd)
		if err != nil {
			return err
		}
		list := loadAchievements(ctx, a)

		out := cmd.OutOrStdout()
		if format != formatText {
			return writeStructured(out, format, list)
		}

		done := achievements.Completed(list)
		fmt.Fprintf(out, "%s %d/%d выполнено\n\n", color.HiYellowString("🏆 Достижения"), done, len(list))
		for _, ach := range list {
			status := color.HiBlackString("%d/%d", ach.Progress, ach.MaxProgress)
			switch {
			case ach.Claimed:
				status = color.GreenString("получено")
			case ach.Completed:
				status = color.HiMagentaString("забрать: tarotluna achievements claim %s", ach.Key)
			}
			fmt.Fprintf(out, "%s %-22s +%d  %s\n", ach.Icon, ach.Name, ach.Reward, status)
			fmt.Fprintf(out, "   %s\n", color.HiBlackString(ach.Description))
		}
		return nil
	},
}

var achievementsClaimCmd = &cobra.Command{
	Use:   "claim [key]",
	Short: "Claim the reward of a completed achievement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := loadAccount(ctx, cmd)
		if err != nil {
			return err
		}

		key := strings.TrimSpace(args[0])
		ach, ok := achievements.Find(loadAchievements(ctx, a), key)
		if !ok {
			return fmt.Errorf("%w: unknown achievement %q", common.ErrInvalidArgument, key)
		}
		if !ach.Claimable() {
			return fmt.Errorf("%w: achievement %q cannot be claimed", common.ErrInvalidState, key)
		}

		if err := a.Client.ClaimAchievement(ctx, a.Account.UserID(), key); err != nil {
			a.Host.Feedback().Notify(host.NotifyError)
			return err
		}
		a.Host.Feedback().Notify(host.NotifySuccess)

		if err := a.Account.Refresh(ctx); err != nil {
			log.WithError(err).Warn("Balance refresh failed")
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("+%d премиум %s!", ach.Reward, common.PluralizeRequests(ach.Reward)))
		printBalance(out, a.Account.Balance())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(achievementsCmd)
	achievementsCmd.AddCommand(achievementsClaimCmd)
	addFormatFlag(achievementsCmd)
}

// progressOf reads the achievement progress of the signed-in user
func progressOf(a *app.App) achievements.Progress {
	if stats, ok := a.Account.Stats(); ok {
		return achievements.ProgressOf(a.Account.User(), &stats)
	}
	return achievements.ProgressOf(a.Account.User(), nil)
}

// loadAchievements derives the achievements and overlays the server records
func loadAchievements(ctx context.Context, a *app.App) []achievements.Achievement {
	list := achievements.Build(progressOf(a))

	resp, err := a.Client.Achievements(ctx, a.Account.UserID())
	if err != nil {
		log.WithError(err).Debug("Server achievements unavailable")
		return list
	}
	return achievements.Merge(list, resp.Achievements)
}
