// Package form implements the data-entry forms as small state machines:
// Editing, then Submitting while exactly one store call is outstanding, then
// Done, which settles straight back into Editing.
package form

import (
	"context"
	"errors"
	"sync"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

type State int

const (
	Editing State = iota
	Submitting
	Done
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// ErrBusy is returned when a form is edited or submitted while a submission is in flight.
var ErrBusy = errors.New("form is submitting")

// ErrClosed is returned by a form that was closed before its submission finished.
var ErrClosed = errors.New("form closed")

type TransitionFunc func(from, to State)

// Form holds the fields of type F and drives one submission at a time.
type Form[F any] struct {
	mu        sync.Mutex
	state     State
	fields    F
	message   string
	closed    bool
	listeners map[int]TransitionFunc
	nextID    int

	complete func(F) bool
	submit   func(context.Context, F) error
	reset    func(F) F
}

func newForm[F any](initial F, complete func(F) bool, submit func(context.Context, F) error) *Form[F] {
	return &Form[F]{
		fields:    initial,
		listeners: make(map[int]TransitionFunc),
		complete:  complete,
		submit:    submit,
		reset: func(F) F {
			var zero F
			return zero
		},
	}
}

func (f *Form[F]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form[F]) Fields() F {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Message is the error shown after the last failed submission, if any.
func (f *Form[F]) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Edit changes the fields. It fails with ErrBusy while submitting.
func (f *Form[F]) Edit(fn func(*F)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Editing {
		return ErrBusy
	}
	fn(&f.fields)
	return nil
}

// CanSubmit reports whether every required field is filled and no submission is running.
func (f *Form[F]) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == Editing && !f.closed && f.complete(f.fields)
}

// OnTransition registers fn for state changes and returns its release function.
func (f *Form[F]) OnTransition(fn TransitionFunc) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

// Submit runs the form's single store call. On success the fields are reset;
// on failure they are kept and Message describes the error.
func (f *Form[F]) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch {
	case f.closed:
		f.mu.Unlock()
		return ErrClosed
	case f.state != Editing:
		f.mu.Unlock()
		return ErrBusy
	case !f.complete(f.fields):
		f.message = "fill in all required fields"
		f.mu.Unlock()
		return internal.NewValidationError(f.message)
	}
	fields := f.fields
	f.message = ""
	notify := f.moveLocked(Submitting)
	f.mu.Unlock()
	notify()

	err := f.submit(ctx, fields)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	toDone := f.moveLocked(Done)
	if err != nil {
		f.message = err.Error()
	} else {
		f.fields = f.reset(fields)
	}
	toEditing := f.moveLocked(Editing)
	f.mu.Unlock()
	toDone()
	toEditing()
	return err
}

// Close detaches the form; an outstanding submission's result is ignored.
func (f *Form[F]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	clear(f.listeners)
}

// moveLocked changes state and returns the notification to run after unlocking.
func (f *Form[F]) moveLocked(to State) func() {
	from := f.state
	f.state = to
	listeners := make([]TransitionFunc, 0, len(f.listeners))
	for _, fn := range f.listeners {
		listeners = append(listeners, fn)
	}
	return func() {
		for _, fn := range listeners {
			fn(from, to)
		}
	}
}
