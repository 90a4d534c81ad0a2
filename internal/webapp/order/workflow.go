// Package order drives the user-confirmed purchase workflow as an explicit
// state machine: select, confirm or decline, submit, settle. The state
// machine is the session's only guard against duplicate submission.
package order

import (
	"context"
	"sync"

	"storefront_miniapp/internal/webapp/gateway"
	"storefront_miniapp/platform/apperr"
)

// State is the workflow position. Succeeded and Failed are transient: the
// workflow reports them and immediately resets to Idle.
type State int

const (
	Idle State = iota
	AwaitingConfirmation
	Submitting
	Succeeded
	Failed
)

// String returns the state name for logs and notifications.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transition is the snapshot delivered on every workflow state change.
type Transition struct {
	State   State
	Product *gateway.Product
	Reason  string
}

// Submitter issues the order creation call. Implemented by the gateway.
type Submitter interface {
	SubmitOrder(ctx context.Context, userID, productID, initData string) error
}

// Notifier receives workflow state changes in mutation order.
type Notifier interface {
	WorkflowChanged(t Transition)
}

// Workflow is the per-session purchase state machine. At most one instance
// of a purchase attempt is active at a time; Confirm issues exactly one
// submit call per accepted confirmation.
type Workflow struct {
	mu        sync.Mutex
	state     State
	product   *gateway.Product
	submitter Submitter
	notifier  Notifier
	userID    string
	initData  string
	// onSettled runs after a successful submission (catalog, order history
	// and profile refresh). It still runs when the listener has detached.
	onSettled func(ctx context.Context)
	detached  bool
}

// New creates an idle workflow for the given user session.
func New(submitter Submitter, notifier Notifier, userID, initData string, onSettled func(ctx context.Context)) *Workflow {
	return &Workflow{
		state:     Idle,
		submitter: submitter,
		notifier:  notifier,
		userID:    userID,
		initData:  initData,
		onSettled: onSettled,
	}
}

// State returns the current workflow state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Select starts a purchase attempt for the product. It is rejected while
// another attempt is active. A product with finite zero stock is refused
// defensively: the workflow reports Failed("out of stock") and resets
// without ever reaching the backend.
func (w *Workflow) Select(p gateway.Product) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != Idle {
		return apperr.Invariant("an order is already in progress")
	}

	if !p.InStock() {
		w.state = Failed
		w.notifyLocked(Transition{State: Failed, Product: &p, Reason: "out of stock"})
		w.state = Idle
		w.notifyLocked(Transition{State: Idle})
		return apperr.Rejected("out of stock")
	}

	selected := p
	w.product = &selected
	w.state = AwaitingConfirmation
	w.notifyLocked(Transition{State: AwaitingConfirmation, Product: w.product})
	return nil
}

// Decline cancels a pending confirmation with no side effects. A decline
// outside AwaitingConfirmation is a no-op: a dismissed dialog may race the
// settlement of the attempt it belonged to.
func (w *Workflow) Decline() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != AwaitingConfirmation {
		return
	}
	w.product = nil
	w.state = Idle
	w.notifyLocked(Transition{State: Idle})
}

// Confirm submits the selected product. Exactly one submit call is issued;
// a second Confirm while the first is outstanding is ignored, which guards
// against double-taps. On success the settle hooks run before the workflow
// resets to Idle; on failure the reason is reported and nothing is refreshed
// or retried.
func (w *Workflow) Confirm(ctx context.Context) error {
	w.mu.Lock()
	if w.state == Submitting {
		w.mu.Unlock()
		return nil
	}
	if w.state != AwaitingConfirmation || w.product == nil {
		w.mu.Unlock()
		return apperr.Invariant("no order awaiting confirmation")
	}

	product := *w.product
	w.state = Submitting
	w.notifyLocked(Transition{State: Submitting, Product: &product})
	w.mu.Unlock()

	err := w.submitter.SubmitOrder(ctx, w.userID, product.ID, w.initData)

	w.mu.Lock()
	if err != nil {
		w.state = Failed
		w.notifyLocked(Transition{State: Failed, Product: &product, Reason: apperr.Reason(err)})
		w.product = nil
		w.state = Idle
		w.notifyLocked(Transition{State: Idle})
		w.mu.Unlock()
		return err
	}

	w.state = Succeeded
	w.notifyLocked(Transition{State: Succeeded, Product: &product})
	settle := w.onSettled
	w.mu.Unlock()

	if settle != nil {
		settle(ctx)
	}

	w.mu.Lock()
	w.product = nil
	w.state = Idle
	w.notifyLocked(Transition{State: Idle})
	w.mu.Unlock()
	return nil
}

// Detach stops workflow notifications for a listener that navigated away.
// An outstanding submission still completes and its settle hooks still
// reconcile catalog and history.
func (w *Workflow) Detach() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.detached = true
}

func (w *Workflow) notifyLocked(t Transition) {
	if w.detached || w.notifier == nil {
		return
	}
	w.notifier.WorkflowChanged(t)
}
