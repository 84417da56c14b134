// Package history formats past readings and payments for display.
package history

import (
	"encoding/json"
	"strings"
)

var readingTypeNames = map[string]string{
	"classic":   "Классический",
	"love":      "На отношения",
	"career":    "На карьеру",
	"situation": "На ситуацию",
	"daily":     "Карта дня",
	"custom":    "Свои карты",
}

var readingTypeIcons = map[string]string{
	"classic":   "🔮",
	"love":      "💖",
	"career":    "💼",
	"situation": "⭐",
	"daily":     "🌙",
	"custom":    "✨",
}

// ParseCards decodes the stored card list: a JSON array of labels, or a
// comma separated list for older records.
func ParseCards(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var cards []string
	if err := json.Unmarshal([]byte(raw), &cards); err == nil {
		return cards
	}

	parts := strings.Split(raw, ",")
	cards = make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cards = append(cards, p)
		}
	}
	return cards
}

// ReadingTypeName returns the display name of a stored reading type
func ReadingTypeName(t string) string {
	if name, ok := readingTypeNames[strings.ToLower(t)]; ok {
		return name
	}
	if t != "" {
		return t
	}
	return readingTypeNames["classic"]
}

// ReadingTypeIcon returns the icon of a stored reading type
func ReadingTypeIcon(t string) string {
	if icon, ok := readingTypeIcons[strings.ToLower(t)]; ok {
		return icon
	}
	return readingTypeIcons["classic"]
}

// Status is the display state of a payment
type Status int

const (
	StatusUnknown Status = iota
	StatusPaid
	StatusPending
	StatusFailed
)

// PaymentStatus returns the display text and state of a payment status
func PaymentStatus(status string) (string, Status) {
	switch status {
	case "completed", "confirmed":
		return "Оплачено", StatusPaid
	case "pending":
		return "В обработке", StatusPending
	case "failed":
		return "Ошибка", StatusFailed
	case "cancelled":
		return "Отменено", StatusFailed
	default:
		return status, StatusUnknown
	}
}
