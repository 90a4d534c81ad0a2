package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront_miniapp/internal/webapp/gateway"
	"storefront_miniapp/platform/apperr"
)

func stock(n int) *int { return &n }

var testProduct = gateway.Product{ID: "p1", Name: "Espresso", Price: 250, Category: "drinks"}

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   int
	lastReq [3]string
	err     error
	// block, when set, holds the submit call until released.
	block chan struct{}
}

func (f *fakeSubmitter) SubmitOrder(_ context.Context, userID, productID, initData string) error {
	f.mu.Lock()
	f.calls++
	f.lastReq = [3]string{userID, productID, initData}
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return f.err
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNotifier struct {
	mu          sync.Mutex
	transitions []Transition
}

func (f *fakeNotifier) WorkflowChanged(t Transition) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = append(f.transitions, t)
}

func (f *fakeNotifier) states() []State {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]State, 0, len(f.transitions))
	for _, tr := range f.transitions {
		out = append(out, tr.State)
	}
	return out
}

func equalStates(got, want []State) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestSelectMovesToAwaitingConfirmation(t *testing.T) {
	notifier := &fakeNotifier{}
	w := New(&fakeSubmitter{}, notifier, "u1", "init", nil)

	if err := w.Select(testProduct); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if w.State() != AwaitingConfirmation {
		t.Fatalf("state = %v, want AwaitingConfirmation", w.State())
	}
	if !equalStates(notifier.states(), []State{AwaitingConfirmation}) {
		t.Fatalf("transitions = %v", notifier.states())
	}
}

func TestSelectWhileActiveFails(t *testing.T) {
	w := New(&fakeSubmitter{}, &fakeNotifier{}, "u1", "init", nil)

	if err := w.Select(testProduct); err != nil {
		t.Fatalf("first Select: %v", err)
	}
	err := w.Select(testProduct)
	if !apperr.Is(err, apperr.KindInvariant) {
		t.Fatalf("second Select: got %v, want invariant error", err)
	}
}

func TestSelectOutOfStockNeverSubmits(t *testing.T) {
	submitter := &fakeSubmitter{}
	notifier := &fakeNotifier{}
	w := New(submitter, notifier, "u1", "init", nil)

	soldOut := testProduct
	soldOut.Stock = stock(0)

	err := w.Select(soldOut)
	if !apperr.Is(err, apperr.KindRejected) {
		t.Fatalf("got %v, want rejected error", err)
	}
	if submitter.callCount() != 0 {
		t.Fatal("out-of-stock selection reached the backend")
	}
	if !equalStates(notifier.states(), []State{Failed, Idle}) {
		t.Fatalf("transitions = %v, want [Failed Idle]", notifier.states())
	}
	if notifier.transitions[0].Reason != "out of stock" {
		t.Fatalf("reason = %q", notifier.transitions[0].Reason)
	}
	if w.State() != Idle {
		t.Fatalf("state = %v, want Idle", w.State())
	}
}

func TestDeclineCancelsPendingConfirmation(t *testing.T) {
	submitter := &fakeSubmitter{}
	notifier := &fakeNotifier{}
	w := New(submitter, notifier, "u1", "init", nil)

	if err := w.Select(testProduct); err != nil {
		t.Fatalf("Select: %v", err)
	}
	w.Decline()

	if w.State() != Idle {
		t.Fatalf("state = %v, want Idle", w.State())
	}
	if submitter.callCount() != 0 {
		t.Fatal("decline triggered a submit")
	}
	if !equalStates(notifier.states(), []State{AwaitingConfirmation, Idle}) {
		t.Fatalf("transitions = %v", notifier.states())
	}
}

func TestDeclineOutsideAwaitingIsNoOp(t *testing.T) {
	notifier := &fakeNotifier{}
	w := New(&fakeSubmitter{}, notifier, "u1", "init", nil)

	w.Decline()

	if w.State() != Idle {
		t.Fatalf("state = %v, want Idle", w.State())
	}
	if len(notifier.states()) != 0 {
		t.Fatalf("idle decline notified: %v", notifier.states())
	}
}

func TestConfirmSuccessSettlesThenResets(t *testing.T) {
	submitter := &fakeSubmitter{}
	notifier := &fakeNotifier{}

	var settled bool
	w := New(submitter, notifier, "u1", "init-token", func(context.Context) { settled = true })

	if err := w.Select(testProduct); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := w.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if submitter.callCount() != 1 {
		t.Fatalf("submit calls = %d, want 1", submitter.callCount())
	}
	if submitter.lastReq != [3]string{"u1", "p1", "init-token"} {
		t.Fatalf("submit args = %v", submitter.lastReq)
	}
	if !settled {
		t.Fatal("settle hook did not run")
	}
	if !equalStates(notifier.states(), []State{AwaitingConfirmation, Submitting, Succeeded, Idle}) {
		t.Fatalf("transitions = %v", notifier.states())
	}
	if w.State() != Idle {
		t.Fatalf("state = %v, want Idle", w.State())
	}
}

func TestConfirmFailureReportsReasonWithoutSettling(t *testing.T) {
	submitter := &fakeSubmitter{err: apperr.Rejected("out of stock")}
	notifier := &fakeNotifier{}

	var settled bool
	w := New(submitter, notifier, "u1", "init", func(context.Context) { settled = true })

	if err := w.Select(testProduct); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := w.Confirm(context.Background()); !apperr.Is(err, apperr.KindRejected) {
		t.Fatalf("Confirm: got %v, want rejected error", err)
	}

	if settled {
		t.Fatal("settle hook ran after failed submission")
	}
	if !equalStates(notifier.states(), []State{AwaitingConfirmation, Submitting, Failed, Idle}) {
		t.Fatalf("transitions = %v", notifier.states())
	}

	var failed *Transition
	for i := range notifier.transitions {
		if notifier.transitions[i].State == Failed {
			failed = &notifier.transitions[i]
		}
	}
	if failed == nil || failed.Reason != "out of stock" {
		t.Fatalf("failed transition = %+v", failed)
	}
}

func TestConfirmDoubleTapSubmitsOnce(t *testing.T) {
	submitter := &fakeSubmitter{block: make(chan struct{})}
	w := New(submitter, &fakeNotifier{}, "u1", "init", nil)

	if err := w.Select(testProduct); err != nil {
		t.Fatalf("Select: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- w.Confirm(context.Background()) }()

	deadline := time.Now().Add(time.Second)
	for w.State() != Submitting {
		if time.Now().After(deadline) {
			t.Fatal("workflow never reached Submitting")
		}
		time.Sleep(time.Millisecond)
	}

	// Second tap while the first submit is outstanding.
	if err := w.Confirm(context.Background()); err != nil {
		t.Fatalf("double-tap Confirm: %v", err)
	}

	close(submitter.block)
	if err := <-done; err != nil {
		t.Fatalf("first Confirm: %v", err)
	}
	if submitter.callCount() != 1 {
		t.Fatalf("submit calls = %d, want 1", submitter.callCount())
	}
}

func TestConfirmWithoutSelectionFails(t *testing.T) {
	w := New(&fakeSubmitter{}, &fakeNotifier{}, "u1", "init", nil)

	if err := w.Confirm(context.Background()); !apperr.Is(err, apperr.KindInvariant) {
		t.Fatalf("got %v, want invariant error", err)
	}
}

func TestDetachStopsNotificationsButStillSettles(t *testing.T) {
	submitter := &fakeSubmitter{}
	notifier := &fakeNotifier{}

	var settled bool
	w := New(submitter, notifier, "u1", "init", func(context.Context) { settled = true })

	if err := w.Select(testProduct); err != nil {
		t.Fatalf("Select: %v", err)
	}
	before := len(notifier.states())

	w.Detach()
	if err := w.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if !settled {
		t.Fatal("settle hook did not run after detach")
	}
	if len(notifier.states()) != before {
		t.Fatalf("detached workflow still notified: %v", notifier.states())
	}
}
