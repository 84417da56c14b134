package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arcanaland/tarotluna/internal/api"
	"github.com/arcanaland/tarotluna/internal/app"
	"github.com/arcanaland/tarotluna/internal/balance"
	"github.com/arcanaland/tarotluna/internal/common"
	"github.com/arcanaland/tarotluna/internal/config"
	"github.com/arcanaland/tarotluna/internal/host"
)

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "List request packages",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		rates, err := a.Client.ListRates(ctx)
		if err != nil {
			log.WithError(err).Warn("Using default rates")
			rates = api.DefaultRates
		}

		out := cmd.OutOrStdout()
		for _, r := range rates {
			line := fmt.Sprintf("%-7s %-14s %-14s %4d ₽", r.PackageKey, r.Name, common.FormatRequests(r.RequestsGranted), r.Price)
			if r.Discount != "" {
				line += " " + color.GreenString(r.Discount)
			}
			if r.Popular {
				line = color.HiMagentaString("★ ") + line
			} else {
				line = "  " + line
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out, color.HiBlackString("\nКупить: tarotluna shop buy <package>"))
		return nil
	},
}

var shopBuyCmd = &cobra.Command{
	Use:   "buy [package]",
	Short: "Buy a request package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := loadAccount(ctx, cmd)
		if err != nil {
			return err
		}

		payment, err := a.Client.CreatePayment(ctx, a.Account.UserID(), args[0])
		if err != nil {
			a.Host.Feedback().Notify(host.NotifyError)
			return fmt.Errorf("error creating payment: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Пакет %s: %s за %.2f ₽\n", payment.PackageKey, common.FormatRequests(payment.RequestsGranted), payment.Amount)
		if err := a.Host.OpenLink(payment.URL); err != nil {
			return err
		}

		if wait, _ := cmd.Flags().GetBool("wait"); wait {
			return waitForPayment(ctx, a, out)
		}
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the request balance",
	Long: `Balance shows the free and premium request balance.

When the launch URL (TAROT_LAUNCH_URL) carries from_payment=true the balance is
refreshed every few seconds until the payment shows up. The marker is handled
once per launch URL; later runs with the same URL just show the balance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := loadAccount(ctx, cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if cleaned, fromPayment := host.ConsumePaymentMarker(cfg.LaunchURL); fromPayment {
			fresh, err := config.NewStore(config.GetConfigFilePath()).MarkPaymentReturn(cfg.LaunchURL)
			if err != nil {
				return err
			}
			log.WithField("url", cleaned).Debug("Payment return marker consumed")
			if fresh {
				return waitForPayment(ctx, a, out)
			}
		}
		printBalance(out, a.Account.Balance())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(shopCmd)
	RootCmd.AddCommand(balanceCmd)
	shopCmd.AddCommand(shopBuyCmd)

	shopBuyCmd.Flags().Bool("wait", false, "Wait until the payment is credited")
}

func waitForPayment(ctx context.Context, a *app.App, out io.Writer) error {
	fmt.Fprintln(out, color.HiBlackString("Ожидаем подтверждение оплаты..."))
	before := a.Account.Balance()

	after, err := a.Account.PollAfterPayment(ctx)
	if err != nil {
		return err
	}
	printBalance(out, after)
	if after.Free > before.Free || after.Premium > before.Premium {
		a.Host.Feedback().Notify(host.NotifySuccess)
		fmt.Fprintln(out, color.GreenString("✔ Оплата зачислена"))
	} else {
		fmt.Fprintln(out, color.YellowString("Оплата ещё не поступила. Проверьте позже: tarotluna balance"))
	}
	return nil
}

func printBalance(out io.Writer, b balance.Balance) {
	fmt.Fprintf(out, "Бесплатные: %s\n", color.HiWhiteString(common.FormatRequests(b.Free)))
	fmt.Fprintf(out, "Премиум:    %s\n", color.HiMagentaString(common.FormatRequests(b.Premium)))
}
