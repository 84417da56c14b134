package reading

import (
	"fmt"
	"sort"
)

// Phase is a step of the reading flow
type Phase int

const (
	PhaseQuestion Phase = iota
	PhaseCardsDrawn
	PhaseRevealing
	PhaseResult
)

func (p Phase) String() string {
	switch p {
	case PhaseQuestion:
		return "question"
	case PhaseCardsDrawn:
		return "cards"
	case PhaseRevealing:
		return "reveal"
	case PhaseResult:
		return "result"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Type is a kind of reading offered in the catalog
type Type string

const (
	TypeClassic      Type = "classic"
	TypeSituation    Type = "situation"
	TypeRelationship Type = "relationship"
	TypeCareer       Type = "career"
	TypeCustom       Type = "custom"
	TypeRandom       Type = "random"
)

// TypeInfo describes a reading type in the catalog
type TypeInfo struct {
	Name        string
	Description string
	Icon        string
}

// Catalog lists every reading type
var Catalog = map[Type]TypeInfo{
	TypeClassic:      {Name: "Классический", Description: "Универсальный расклад на любой вопрос", Icon: "🔮"},
	TypeSituation:    {Name: "На ситуацию", Description: "Анализ текущей ситуации и её развития", Icon: "⭐"},
	TypeRelationship: {Name: "На отношения", Description: "Расклад о любви и партнёрстве", Icon: "💕"},
	TypeCareer:       {Name: "На карьеру", Description: "Вопросы работы и финансов", Icon: "💼"},
	TypeCustom:       {Name: "Свои карты", Description: "Выберите карты сами", Icon: "✨"},
	TypeRandom:       {Name: "Случайный", Description: "Карта дня без вопроса", Icon: "🌙"},
}

// Types returns the reading types in a stable order
func Types() []Type {
	out := make([]Type, 0, len(Catalog))
	for t := range Catalog {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseType validates a reading type name
func ParseType(s string) (Type, error) {
	t := Type(s)
	if _, ok := Catalog[t]; !ok {
		return "", fmt.Errorf("unknown reading type: %s", s)
	}
	return t, nil
}

// Info returns the catalog entry of t
func (t Type) Info() TypeInfo {
	return Catalog[t]
}

// RequiresQuestion reports whether the type needs a question from the user
func (t Type) RequiresQuestion() bool {
	return t != TypeRandom
}

// NeedsPremium reports whether a reading is paid from the premium pool
func NeedsPremium(count int, t Type) bool {
	return count >= 4 || t == TypeCustom
}
