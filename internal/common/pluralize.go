package common

import "fmt"

// PluralizeRequests returns the Russian form of "запрос" for n.
//
//	PluralizeRequests(1)  → "запрос"
//	PluralizeRequests(3)  → "запроса"
//	PluralizeRequests(11) → "запросов"
func PluralizeRequests(n int) string {
	return plural(n, "запрос", "запроса", "запросов")
}

// plural picks the form for 1, for 2..4 and for the rest, skipping 11..14.
func plural(n int, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	lastDigit := n % 10
	lastTwoDigits := n % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return one
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return few
	}
	return many
}

// FormatRequests formats a request count, e.g. "5 запросов".
func FormatRequests(n int) string {
	return fmt.Sprintf("%d %s", n, PluralizeRequests(n))
}

// PluralizeCards returns the Russian form of "карта" for n.
func PluralizeCards(n int) string {
	return plural(n, "карта", "карты", "карт")
}

// FormatCards formats a card count, e.g. "3 карты".
func FormatCards(n int) string {
	return fmt.Sprintf("%d %s", n, PluralizeCards(n))
}
