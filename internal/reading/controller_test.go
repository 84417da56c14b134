package reading_test

import (
	"context"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/arcanaland/tarotluna/internal/balance"
	"github.com/arcanaland/tarotluna/internal/card"
	"github.com/arcanaland/tarotluna/internal/common"
	"github.com/arcanaland/tarotluna/internal/deck"
	"github.com/arcanaland/tarotluna/internal/reading"
)

const question = "Что ждёт меня в новой работе?"

var _ = Describe("Controller", func() {
	var (
		clock     *manualClock
		backend   *stubBackend
		wallet    *stubWallet
		feedback  *recordingFeedback
		navigator *countingNavigator
		observer  *recordingObserver
		draws     int
		opts      reading.Options
		ctrl      *reading.Controller
		cards     []card.Definition
		ctx       context.Context
	)

	build := func() {
		var err error
		ctrl, err = reading.NewController(backend, wallet, opts)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(ctrl.Close)
	}

	// revealAll starts a reading and advances until every card is face up
	revealAll := func(count int) {
		Expect(ctrl.StartReading(question, count)).To(Succeed())
		Expect(ctrl.RevealAll()).To(Succeed())
		clock.Advance(time.Duration(count) * reading.DefaultRevealInterval)
		Expect(ctrl.Session().Revealed).To(HaveLen(count))
	}

	BeforeEach(func() {
		var err error
		cards, err = deck.Default()
		Expect(err).NotTo(HaveOccurred())

		ctx = context.Background()
		clock = &manualClock{}
		backend = &stubBackend{reply: "Первый абзац.\n\nВторой абзац."}
		wallet = newStubWallet(balance.Balance{Free: 3, Premium: 1, TotalReadings: 4})
		feedback = &recordingFeedback{}
		navigator = &countingNavigator{}
		observer = &recordingObserver{}
		draws = 0

		opts = reading.Options{
			Type:      reading.TypeClassic,
			UserID:    42,
			Deck:      cards,
			Draw:      fixedHand(&draws),
			Clock:     clock,
			Feedback:  feedback,
			Navigator: navigator,
			Observer:  observer,
		}
	})

	JustBeforeEach(func() {
		build()
	})

	Describe("StartReading", func() {
		It("should draw the cards and wait for the reveal", func() {
			Expect(ctrl.StartReading(question, 3)).To(Succeed())

			s := ctrl.Session()
			Expect(s.Phase).To(Equal(reading.PhaseCardsDrawn))
			Expect(s.Cards).To(HaveLen(3))
			Expect(s.Revealed).To(BeEmpty())
			Expect(s.Question).To(Equal(question))
			Expect(draws).To(Equal(1))
			Expect(feedback.Events()).To(Equal([]string{"impact:medium"}))
			Expect(backend.Calls()).To(BeZero())
		})

		It("should reject questions on forbidden topics without drawing", func() {
			err := ctrl.StartReading("Когда закончится моя болезнь?", 3)
			Expect(err).To(MatchError(common.ErrValidation))
			Expect(draws).To(BeZero())
			Expect(ctrl.Session().Phase).To(Equal(reading.PhaseQuestion))
			Expect(feedback.Events()).To(Equal([]string{"notify:error"}))
		})

		It("should match inflected forms of forbidden words", func() {
			err := ctrl.StartReading("Что будет с моей болезнью?", 3)
			Expect(err).To(MatchError(common.ErrValidation))
			Expect(draws).To(BeZero())
		})

		It("should reject a short question with a warning", func() {
			err := ctrl.StartReading("  да ", 3)
			Expect(err).To(MatchError(common.ErrValidation))
			Expect(draws).To(BeZero())
			Expect(feedback.Events()).To(Equal([]string{"notify:warning"}))
		})

		It("should reject card counts outside 1..5", func() {
			Expect(ctrl.StartReading(question, 0)).To(MatchError(common.ErrValidation))
			Expect(ctrl.StartReading(question, 6)).To(MatchError(common.ErrValidation))
			Expect(draws).To(BeZero())
		})

		It("should only start from the question phase", func() {
			Expect(ctrl.StartReading(question, 3)).To(Succeed())
			Expect(ctrl.StartReading(question, 3)).To(MatchError(common.ErrInvalidState))
			Expect(draws).To(Equal(1))
		})

		Context("for the card of the day", func() {
			BeforeEach(func() {
				opts.Type = reading.TypeRandom
			})

			It("should not require a question", func() {
				Expect(ctrl.StartReading("", 1)).To(Succeed())
				Expect(ctrl.RevealAll()).To(Succeed())
				clock.Advance(reading.DefaultRevealInterval + reading.DefaultFetchDelay)

				Expect(backend.Calls()).To(Equal(1))
				Expect(backend.LastRequest().Question).To(Equal(reading.DefaultQuestion))
				Expect(backend.LastRequest().ReadingType).To(Equal("random"))
			})
		})
	})

	Describe("RevealAll", func() {
		It("should require drawn cards", func() {
			Expect(ctrl.RevealAll()).To(MatchError(common.ErrInvalidState))
		})

		It("should reveal cards one by one in order", func() {
			Expect(ctrl.StartReading(question, 3)).To(Succeed())
			Expect(ctrl.RevealAll()).To(Succeed())
			Expect(ctrl.Session().Phase).To(Equal(reading.PhaseRevealing))

			clock.Advance(699 * time.Millisecond)
			Expect(ctrl.Session().Revealed).To(BeEmpty())

			clock.Advance(time.Millisecond)
			Expect(ctrl.Session().Revealed).To(Equal([]int{0}))

			clock.Advance(700 * time.Millisecond)
			Expect(ctrl.Session().Revealed).To(Equal([]int{0, 1}))

			clock.Advance(700 * time.Millisecond)
			Expect(ctrl.Session().Revealed).To(Equal([]int{0, 1, 2}))
			Expect(observer.revealed).To(Equal([]int{0, 1, 2}))
		})

		It("should fetch the interpretation 800ms after the last reveal", func() {
			revealAll(3)
			Expect(backend.Calls()).To(BeZero())

			clock.Advance(799 * time.Millisecond)
			Expect(backend.Calls()).To(BeZero())
			Expect(ctrl.Session().Phase).To(Equal(reading.PhaseRevealing))

			clock.Advance(time.Millisecond)
			Expect(backend.Calls()).To(Equal(1))
			Expect(ctrl.Session().Phase).To(Equal(reading.PhaseResult))
		})

		It("should give medium feedback per revealed card", func() {
			Expect(ctrl.StartReading(question, 2)).To(Succeed())
			feedback.Reset()
			Expect(ctrl.RevealAll()).To(Succeed())
			clock.Advance(2 * reading.DefaultRevealInterval)
			Expect(feedback.Events()).To(Equal([]string{"impact:medium", "impact:medium", "impact:medium"}))
		})
	})

	Describe("FetchInterpretation", func() {
		It("should send the drawn hand to the backend", func() {
			revealAll(3)
			clock.Advance(reading.DefaultFetchDelay)

			req := backend.LastRequest()
			Expect(req.UserID).To(Equal(int64(42)))
			Expect(req.Question).To(Equal(question))
			Expect(req.CardCount).To(Equal(3))
			Expect(req.ReadingType).To(Equal("classic"))
			Expect(req.UsePremium).To(BeFalse())
			Expect(req.CardLabels).To(Equal([]string{"Шут", "Маг (перевернутая)", "Верховная Жрица"}))
		})

		It("should debit the free pool and keep the server value on refresh", func() {
			revealAll(3)
			clock.Advance(reading.DefaultFetchDelay)
			Expect(wallet.Balance().Free).To(Equal(2))
			Expect(wallet.Balance().TotalReadings).To(Equal(5))

			wallet.setServer(balance.Balance{Free: 2, Premium: 1, TotalReadings: 5})
			clock.Advance(reading.DefaultReconcileDelay)
			Expect(wallet.Reconciles()).To(Equal(1))
			Expect(wallet.Balance().Free).To(Equal(2))
		})

		It("should let the server balance overwrite the optimistic one", func() {
			revealAll(3)
			wallet.setServer(balance.Balance{Free: 5, Premium: 1, TotalReadings: 5})
			clock.Advance(reading.DefaultFetchDelay)
			Expect(wallet.Balance().Free).To(Equal(2))

			clock.Advance(999 * time.Millisecond)
			Expect(wallet.Reconciles()).To(BeZero())
			clock.Advance(time.Millisecond)
			Expect(wallet.Balance().Free).To(Equal(5))
		})

		It("should clean and paginate the interpretation", func() {
			backend.set("**Шут** открывает <b>путь</b>.\n\nВторой абзац.", nil)
			revealAll(3)
			clock.Advance(reading.DefaultFetchDelay)

			s := ctrl.Session()
			Expect(s.Interpretation).To(Equal("Шут открывает путь.\n\nВторой абзац."))
			Expect(s.Pages).To(Equal([]string{s.Interpretation}))
			Expect(s.Page).To(BeZero())
			Expect(observer.results).To(Equal(1))
		})

		Context("with four or more cards", func() {
			It("should be paid from the premium pool", func() {
				revealAll(4)
				clock.Advance(reading.DefaultFetchDelay)
				Expect(backend.LastRequest().UsePremium).To(BeTrue())
				Expect(wallet.Balance()).To(Equal(balance.Balance{Free: 3, Premium: 0, TotalReadings: 5}))
			})
		})

		Context("with a custom reading", func() {
			BeforeEach(func() {
				opts.Type = reading.TypeCustom
			})

			It("should be paid from the premium pool", func() {
				revealAll(1)
				clock.Advance(reading.DefaultFetchDelay)
				Expect(backend.LastRequest().UsePremium).To(BeTrue())
			})
		})

		Context("when both pools are empty", func() {
			BeforeEach(func() {
				wallet = newStubWallet(balance.Balance{})
			})

			It("should send the user to the shop without calling the backend", func() {
				revealAll(3)
				clock.Advance(reading.DefaultFetchDelay)

				Expect(backend.Calls()).To(BeZero())
				Expect(navigator.opened.Load()).To(Equal(int32(1)))
				Expect(ctrl.Session().Phase).To(Equal(reading.PhaseRevealing))
				Expect(observer.Failures()).To(ContainElement(MatchError(common.ErrInsufficientBalance)))

				Expect(ctrl.FetchInterpretation(ctx)).To(MatchError(common.ErrInsufficientBalance))
			})
		})

		Context("when only the free pool is empty", func() {
			BeforeEach(func() {
				wallet = newStubWallet(balance.Balance{Free: 0, Premium: 2})
			})

			It("should still request the reading", func() {
				revealAll(3)
				clock.Advance(reading.DefaultFetchDelay)
				Expect(backend.Calls()).To(Equal(1))
				Expect(navigator.opened.Load()).To(BeZero())
			})
		})

		Context("when the backend fails", func() {
			BeforeEach(func() {
				backend.err = &fakeBackendError{}
			})

			It("should stay in the reveal phase without mutating the balance", func() {
				revealAll(3)
				feedback.Reset()
				clock.Advance(reading.DefaultFetchDelay)

				s := ctrl.Session()
				Expect(s.Phase).To(Equal(reading.PhaseRevealing))
				Expect(s.Failed).To(BeTrue())
				Expect(s.Pages).To(BeEmpty())
				Expect(wallet.Balance().Free).To(Equal(3))
				Expect(feedback.Events()).To(ContainElement("notify:error"))
				Expect(observer.Failures()).To(HaveLen(1))
				Expect(clock.Pending()).To(BeZero())
			})

			It("should not fetch the same hand again", func() {
				Expect(ctrl.StartReading(question, 2)).To(Succeed())
				Expect(ctrl.RevealAll()).To(Succeed())
				clock.Advance(2*reading.DefaultRevealInterval + reading.DefaultFetchDelay)
				Expect(backend.Calls()).To(Equal(1))

				backend.set("Толкование", nil)
				Expect(ctrl.FetchInterpretation(ctx)).To(MatchError(common.ErrInvalidState))

				Expect(backend.Calls()).To(Equal(1))
				Expect(ctrl.Session().Phase).To(Equal(reading.PhaseRevealing))
				Expect(wallet.Balance().Free).To(Equal(3))
				Expect(draws).To(Equal(1))
			})

			It("should accept a new reading after the failure", func() {
				revealAll(3)
				clock.Advance(reading.DefaultFetchDelay)
				Expect(ctrl.Session().Failed).To(BeTrue())

				backend.set("Толкование", nil)
				ctrl.NewReading()
				Expect(ctrl.Session().Failed).To(BeFalse())

				revealAll(3)
				clock.Advance(reading.DefaultFetchDelay)
				Expect(backend.Calls()).To(Equal(2))
				Expect(draws).To(Equal(2))
				Expect(ctrl.Session().Phase).To(Equal(reading.PhaseResult))
				Expect(wallet.Balance().Free).To(Equal(2))
			})

			It("should surface the backend error", func() {
				revealAll(3)
				err := ctrl.FetchInterpretation(ctx)
				Expect(err).To(HaveOccurred())
				var be *fakeBackendError
				Expect(errors.As(err, &be)).To(BeTrue())
			})
		})

		It("should require every card to be revealed", func() {
			Expect(ctrl.StartReading(question, 3)).To(Succeed())
			Expect(ctrl.RevealAll()).To(Succeed())
			clock.Advance(reading.DefaultRevealInterval)
			Expect(ctrl.FetchInterpretation(ctx)).To(MatchError(common.ErrInvalidState))
			Expect(backend.Calls()).To(BeZero())
		})

		It("should reject a second fetch while one is pending", func() {
			backend.release = make(chan struct{})
			revealAll(3)

			done := make(chan struct{})
			go func() {
				defer close(done)
				clock.Advance(reading.DefaultFetchDelay)
			}()
			Eventually(backend.Calls).Should(Equal(1))
			Expect(ctrl.Pending()).To(BeTrue())

			Expect(ctrl.FetchInterpretation(ctx)).To(MatchError(common.ErrFetchPending))
			Expect(backend.Calls()).To(Equal(1))

			close(backend.release)
			Eventually(done).Should(BeClosed())
			Expect(ctrl.Session().Phase).To(Equal(reading.PhaseResult))
			Expect(wallet.Balance().Free).To(Equal(2))
		})

		It("should drop a result that arrives after the reading was reset", func() {
			backend.release = make(chan struct{})
			revealAll(3)

			result := make(chan error, 1)
			go func() {
				result <- ctrl.FetchInterpretation(ctx)
			}()
			Eventually(backend.Calls).Should(Equal(1))

			ctrl.NewReading()
			close(backend.release)

			Eventually(result).Should(Receive(MatchError(common.ErrSessionReplaced)))
			Expect(ctrl.Session()).To(Equal(reading.Session{}))
			Expect(wallet.Balance().Free).To(Equal(3))
			Expect(ctrl.Pending()).To(BeFalse())
		})
	})

	Describe("paging", func() {
		BeforeEach(func() {
			opts.PageLength = 40
			backend.reply = strings.Join([]string{
				"Первый абзац толкования.",
				"Второй абзац толкования.",
				"Третий абзац толкования.",
			}, "\n\n")
		})

		JustBeforeEach(func() {
			revealAll(3)
			clock.Advance(reading.DefaultFetchDelay)
			Expect(ctrl.Session().Pages).To(HaveLen(3))
			feedback.Reset()
		})

		It("should move between pages without wrapping around", func() {
			Expect(ctrl.PrevPage()).To(BeFalse())
			Expect(ctrl.Session().Page).To(Equal(0))

			Expect(ctrl.NextPage()).To(BeTrue())
			Expect(ctrl.NextPage()).To(BeTrue())
			Expect(ctrl.Session().Page).To(Equal(2))
			Expect(ctrl.Session().CurrentPage()).To(Equal("Третий абзац толкования."))

			Expect(ctrl.NextPage()).To(BeFalse())
			Expect(ctrl.Session().Page).To(Equal(2))

			Expect(ctrl.PrevPage()).To(BeTrue())
			Expect(ctrl.Session().Page).To(Equal(1))

			Expect(feedback.Events()).To(Equal([]string{"selection", "selection", "selection"}))
		})
	})

	Describe("NewReading", func() {
		It("should cancel the pending reveal", func() {
			Expect(ctrl.StartReading(question, 3)).To(Succeed())
			Expect(ctrl.RevealAll()).To(Succeed())
			clock.Advance(reading.DefaultRevealInterval)
			Expect(ctrl.Session().Revealed).To(Equal([]int{0}))

			ctrl.NewReading()
			feedback.Reset()
			clock.Advance(10 * time.Second)

			Expect(ctrl.Session()).To(Equal(reading.Session{}))
			Expect(backend.Calls()).To(BeZero())
			Expect(feedback.Events()).To(BeEmpty())
			Expect(observer.revealed).To(Equal([]int{0}))
		})

		It("should return to a fresh question state", func() {
			Expect(ctrl.StartReading(question, 2)).To(Succeed())
			Expect(ctrl.RevealAll()).To(Succeed())
			clock.Advance(reading.DefaultRevealInterval)

			ctrl.NewReading()
			clock.Advance(5 * time.Second)

			Expect(observer.revealed).To(Equal([]int{0}))
			Expect(backend.Calls()).To(BeZero())
			Expect(ctrl.Session()).To(Equal(reading.Session{}))
			Expect(ctrl.Session().Phase).To(Equal(reading.PhaseQuestion))
		})

		It("should cancel the pending fetch", func() {
			revealAll(3)
			ctrl.NewReading()
			clock.Advance(10 * time.Second)

			Expect(backend.Calls()).To(BeZero())
			Expect(ctrl.Session().Phase).To(Equal(reading.PhaseQuestion))
		})

		It("should cancel the pending reconciliation", func() {
			revealAll(3)
			clock.Advance(reading.DefaultFetchDelay)
			ctrl.NewReading()
			clock.Advance(10 * time.Second)

			Expect(wallet.Reconciles()).To(BeZero())
		})

		It("should allow a new reading afterwards", func() {
			revealAll(3)
			clock.Advance(reading.DefaultFetchDelay)
			feedback.Reset()
			ctrl.NewReading()
			Expect(feedback.Events()).To(Equal([]string{"impact:light"}))

			revealAll(2)
			clock.Advance(reading.DefaultFetchDelay)
			Expect(backend.Calls()).To(Equal(2))
			Expect(ctrl.Session().Count).To(Equal(2))
		})
	})

	Describe("Close", func() {
		It("should stop every timer", func() {
			Expect(ctrl.StartReading(question, 3)).To(Succeed())
			Expect(ctrl.RevealAll()).To(Succeed())
			ctrl.Close()
			clock.Advance(10 * time.Second)

			Expect(ctrl.Session().Revealed).To(BeEmpty())
			Expect(backend.Calls()).To(BeZero())
			Expect(ctrl.StartReading(question, 3)).To(MatchError(common.ErrInvalidState))
		})
	})

	Describe("NewController", func() {
		It("should reject unknown reading types", func() {
			opts.Type = "tea-leaves"
			_, err := reading.NewController(backend, wallet, opts)
			Expect(err).To(MatchError(common.ErrInvalidArgument))
		})
	})
})

type fakeBackendError struct{}

func (*fakeBackendError) Error() string { return "server error (HTTP 500): boom" }
