package cmd

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/tarotluna/internal/achievements"
	"github.com/arcanaland/tarotluna/internal/balance"
)

type profileView struct {
	Name         string                 `json:"name" yaml:"name"`
	Username     string                 `json:"username,omitempty" yaml:"username,omitempty"`
	Balance      balance.Balance        `json:"balance" yaml:"balance"`
	Level        achievements.LevelInfo `json:"level" yaml:"level"`
	AvgCards     float64                `json:"avg_cards" yaml:"avg_cards"`
	FavoriteType string                 `json:"favorite_type" yaml:"favorite_type"`
	ActiveDays   int                    `json:"active_days" yaml:"active_days"`
	Referrals    int                    `json:"referrals" yaml:"referrals"`
	ReferralLink string                 `json:"referral_link" yaml:"referral_link"`
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile, level and statistics",
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

		identity := a.Host.Identity()
		user := a.Account.User()
		stats, ok := a.Account.Stats()
		progress := progressOf(a)

		view := profileView{
			Name:         identity.DisplayName(),
			Username:     identity.Username,
			Balance:      a.Account.Balance(),
			Level:        achievements.Level(user, progress),
			AvgCards:     3.0,
			FavoriteType: "Классический",
			ActiveDays:   progress.ActiveDays,
			Referrals:    user.ReferralsCount,
			ReferralLink: achievements.ReferralLinkBase + strconv.FormatInt(identity.ID, 10),
		}
		if ok {
			view.AvgCards = stats.AvgCards
			if stats.FavoriteType != "" {
				view.FavoriteType = stats.FavoriteType
			}
		}

		out := cmd.OutOrStdout()
		if format != formatText {
			return writeStructured(out, format, view)
		}

		fmt.Fprintln(out, color.HiWhiteString(view.Name))
		if view.Username != "" {
			fmt.Fprintln(out, color.HiBlackString("@"+view.Username))
		}
		fmt.Fprintf(out, "\nУровень %d · %d/%d XP\n", view.Level.Level, view.Level.Experience, view.Level.NextLevel)
		printBalance(out, view.Balance)
		fmt.Fprintf(out, "\nРаскладов:       %d\n", progress.TotalReadings)
		fmt.Fprintf(out, "Ср. карт:        %.1f\n", view.AvgCards)
		fmt.Fprintf(out, "Любимый расклад: %s\n", view.FavoriteType)
		fmt.Fprintf(out, "Дней активности: %d\n", view.ActiveDays)
		fmt.Fprintf(out, "\nПриглашено друзей: %d\n", view.Referrals)
		fmt.Fprintf(out, "Ваша ссылка: %s\n", color.HiBlueString(view.ReferralLink))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(profileCmd)
	addFormatFlag(profileCmd)
}
