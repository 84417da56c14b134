package host

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// ImpactStyle is the strength of an impact feedback
type ImpactStyle string

const (
	ImpactLight  ImpactStyle = "light"
	ImpactMedium ImpactStyle = "medium"
	ImpactHeavy  ImpactStyle = "heavy"
)

// Notification is the kind of a notification feedback
type Notification string

const (
	NotifySuccess Notification = "success"
	NotifyError   Notification = "error"
	NotifyWarning Notification = "warning"
)

// Feedback mirrors the Telegram HapticFeedback surface
type Feedback interface {
	Impact(style ImpactStyle)
	Notify(kind Notification)
	Selection()
}

// Noop ignores all feedback
type Noop struct{}

func (Noop) Impact(ImpactStyle)  {}
func (Noop) Notify(Notification) {}
func (Noop) Selection()          {}

// Terminal renders feedback as short colored glyphs
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminal returns terminal feedback written to w
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Impact(style ImpactStyle) {
	switch style {
	case ImpactHeavy:
		t.print(color.New(color.FgHiMagenta), "✦✦✦")
	case ImpactMedium:
		t.print(color.New(color.FgMagenta), "✦✦")
	default:
		t.print(color.New(color.FgHiBlack), "✦")
	}
}

func (t *Terminal) Notify(kind Notification) {
	switch kind {
	case NotifySuccess:
		t.print(color.New(color.FgGreen), "✔")
	case NotifyError:
		t.print(color.New(color.FgRed), "✖")
	case NotifyWarning:
		t.print(color.New(color.FgYellow), "!")
	}
}

func (t *Terminal) Selection() {
	t.print(color.New(color.FgCyan), "·")
}

func (t *Terminal) print(c *color.Color, glyph string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c.Fprint(t.w, glyph)
	fmt.Fprint(t.w, " ")
}

// Opener opens external links
type Opener interface {
	Open(url string) error
}

// PrintOpener prints links for the user to open
type PrintOpener struct {
	W io.Writer
}

func (p PrintOpener) Open(url string) error {
	if p.W == nil {
		return nil
	}
	_, err := fmt.Fprintf(p.W, "Open this link to continue: %s\n", color.HiBlueString(url))
	return err
}
