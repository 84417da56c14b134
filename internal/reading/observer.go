package reading

import "github.com/arcanaland/tarotluna/internal/card"

// Observer is notified of progress so a UI can render it.
// Calls are made without the controller lock held.
type Observer interface {
	PhaseChanged(p Phase)
	CardRevealed(index int, c card.Drawn)
	Generating()
	ResultReady(s Session)
	Failed(err error)
}

// NopObserver ignores every notification
type NopObserver struct{}

func (NopObserver) PhaseChanged(Phase)            {}
func (NopObserver) CardRevealed(int, card.Drawn) {}
func (NopObserver) Generating()                   {}
func (NopObserver) ResultReady(Session)           {}
func (NopObserver) Failed(error)                  {}
