package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arcanaland/tarotluna/internal/app"
	"github.com/arcanaland/tarotluna/internal/card"
	"github.com/arcanaland/tarotluna/internal/common"
	"github.com/arcanaland/tarotluna/internal/reading"
	"github.com/arcanaland/tarotluna/internal/text"
)

var readCmd = &cobra.Command{
	Use:   "read [question]",
	Short: "Ask a question and get a tarot reading",
	Long: `Read draws cards for your question, reveals them one by one and shows the
interpretation page by page.

Readings of 4 or more cards and custom readings are paid from premium requests.

Examples:
  tarotluna read "Что ждёт меня в новой работе?"
  tarotluna read --cards 5 --type career "Стоит ли менять профессию?"
  tarotluna read --type random`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		typeName, _ := cmd.Flags().GetString("type")
		if typeName == "" {
			typeName = cfg.DefaultReadingType
		}
		readingType, err := reading.ParseType(typeName)
		if err != nil {
			return err
		}
		count, _ := cmd.Flags().GetInt("cards")
		if count == 0 {
			count = cfg.DefaultCardCount
		}

		a, err := loadAccount(ctx, cmd)
		if err != nil {
			return err
		}

		in := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()

		if !a.Account.RulesAgreed() {
			agree, _ := cmd.Flags().GetBool("agree")
			if !agree && !confirm(in, out, rulesText+"\nПринять правила?") {
				return fmt.Errorf("the rules must be accepted before the first reading")
			}
			if err := a.Account.AgreeRules(); err != nil {
				return err
			}
		}

		question := strings.Join(args, " ")
		if question == "" && readingType.RequiresQuestion() {
			fmt.Fprint(out, color.HiMagentaString("Ваш вопрос: "))
			question, _ = in.ReadString('\n')
		}

		return runReading(ctx, a, readingType, question, count, in, out)
	},
}

func init() {
	RootCmd.AddCommand(readCmd)

	readCmd.Flags().IntP("cards", "n", 0, "Number of cards to draw (1-5)")
	readCmd.Flags().StringP("type", "t", "", "Reading type: "+strings.Join(typeNames(), ", "))
	readCmd.Flags().Bool("agree", false, "Accept the rules without asking")
}

func typeNames() []string {
	var names []string
	for _, t := range reading.Types() {
		names = append(names, string(t))
	}
	return names
}

func runReading(ctx context.Context, a *app.App, t reading.Type, question string, count int, in *bufio.Reader, out io.Writer) error {
	obs := newTerminalObserver(out)
	ctrl, err := a.NewController(t, shopNavigator{out: out}, obs)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	info := t.Info()
	fmt.Fprintf(out, "%s %s · %s\n", info.Icon, color.HiWhiteString(info.Name), common.FormatCards(count))

	if err := ctrl.StartReading(question, count); err != nil {
		return err
	}
	if err := ctrl.RevealAll(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case session := <-obs.results:
			showPages(ctrl, session, in, out)
			balance := a.Account.Balance()
			fmt.Fprintf(out, "\nОсталось: %s, премиум: %s\n",
				common.FormatRequests(balance.Free), common.FormatRequests(balance.Premium))
			return nil
		case err := <-obs.failures:
			if errors.Is(err, common.ErrInsufficientBalance) || errors.Is(err, common.ErrSessionReplaced) {
				return err
			}
			fmt.Fprintln(out, color.RedString("Не удалось получить толкование: %v", err))
			if !confirm(in, out, "Начать новый расклад?") {
				return err
			}
			// the failed hand is spent; draw a fresh one for the same question
			ctrl.NewReading()
			if err := ctrl.StartReading(question, count); err != nil {
				return err
			}
			if err := ctrl.RevealAll(); err != nil {
				return err
			}
		}
	}
}

// showPages pages through the interpretation
func showPages(ctrl *reading.Controller, s reading.Session, in *bufio.Reader, out io.Writer) {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		width = min(w, 100)
	}
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && len(s.Pages) > 1

	for {
		s = ctrl.Session()
		fmt.Fprintln(out)
		if len(s.Pages) > 1 {
			fmt.Fprintln(out, color.HiBlackString("— %d / %d —", s.Page+1, len(s.Pages)))
		}
		for _, line := range text.Wrap(s.CurrentPage(), width) {
			fmt.Fprintln(out, line)
		}

		if !interactive {
			if !ctrl.NextPage() {
				return
			}
			continue
		}

		fmt.Fprint(out, color.HiBlackString("\n[n] дальше  [p] назад  [q] выход: "))
		answer, err := in.ReadString('\n')
		if err != nil {
			return
		}
		switch strings.TrimSpace(strings.ToLower(answer)) {
		case "p", "prev":
			ctrl.PrevPage()
		case "q", "quit":
			return
		default:
			if !ctrl.NextPage() {
				return
			}
		}
	}
}

func confirm(in *bufio.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	answer, err := in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.TrimSpace(strings.ToLower(answer)) {
	case "y", "yes", "д", "да":
		return true
	}
	return false
}

// shopNavigator points the user at the shop command
type shopNavigator struct {
	out io.Writer
}

func (n shopNavigator) OpenShop() {
	fmt.Fprintln(n.out, color.YellowString("Запросы закончились. Пополнить баланс: tarotluna shop"))
}

// terminalObserver prints the reveal sequence
type terminalObserver struct {
	out      io.Writer
	results  chan reading.Session
	failures chan error
}

func newTerminalObserver(out io.Writer) *terminalObserver {
	return &terminalObserver{
		out:      out,
		results:  make(chan reading.Session, 1),
		failures: make(chan error, 1),
	}
}

func (o *terminalObserver) PhaseChanged(p reading.Phase) {
	if p == reading.PhaseRevealing {
		fmt.Fprintln(o.out, color.HiBlackString("Карты открываются..."))
	}
}

func (o *terminalObserver) CardRevealed(index int, c card.Drawn) {
	name := color.HiWhiteString(c.LocalizedName)
	if c.IsReversed {
		name += color.HiBlackString(card.ReversedSuffix)
	}
	fmt.Fprintf(o.out, "%d. %s\n", index+1, name)
	if m := c.Meaning(); m != "" {
		fmt.Fprintf(o.out, "   %s\n", color.HiBlackString(m))
	}
}

func (o *terminalObserver) Generating() {
	fmt.Fprintln(o.out, color.MagentaString("\nКарты шепчут..."))
}

func (o *terminalObserver) ResultReady(s reading.Session) {
	select {
	case o.results <- s:
	default:
	}
}

func (o *terminalObserver) Failed(err error) {
	select {
	case o.failures <- err:
	default:
	}
}
