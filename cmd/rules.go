package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/tarotluna/internal/config"
)

const rulesText = `Добро пожаловать в Таро Luna

🌙 Таро — это инструмент самопознания и рефлексии. Карты не предсказывают будущее,
   а помогают взглянуть на ситуацию под новым углом.
✨ Интерпретации носят рекомендательный характер. Все важные решения принимаете
   только вы сами.
⚠️  Сервис предназначен для лиц старше 18 лет.
🛡  Ваши вопросы и расклады хранятся конфиденциально. Мы не передаём
   персональные данные третьим лицам.

Принимая правила, вы подтверждаете, что вам есть 18 лет.`

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the rules of the service",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, rulesText)

		store := config.NewStore(config.GetConfigFilePath())
		if agree, _ := cmd.Flags().GetBool("agree"); agree {
			if err := store.SetRulesAgreed(true); err != nil {
				return err
			}
			fmt.Fprintln(out, color.GreenString("\n✔ Правила приняты"))
			return nil
		}

		agreed, err := store.RulesAgreed()
		if err != nil {
			return err
		}
		if agreed {
			fmt.Fprintln(out, color.GreenString("\n✔ Правила приняты"))
		} else {
			fmt.Fprintln(out, color.YellowString("\nПримите правила: tarotluna rules --agree"))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().Bool("agree", false, "Accept the rules")
}
