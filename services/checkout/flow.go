// Package checkout implements the three-step checkout form: field validation,
// step gating and the simulated order submission.
package checkout

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"storefront-api/models"
)

func init() {
	gob.Register(Snapshot{})
}

var (
	ErrNotEditing       = errors.New("checkout is no longer editable")
	ErrNotOnPaymentStep = errors.New("order can only be submitted from the payment step")
	ErrLastStep         = errors.New("already on the last checkout step")
)

type Step int

const (
	StepCustomer Step = iota + 1
	StepShipping
	StepPayment
)

var stepFields = map[Step][]string{
	StepCustomer: {"firstName", "lastName", "email", "phone"},
	StepShipping: {"address", "city", "state", "zipCode", "country"},
	StepPayment:  {"cardHolder", "cardNumber", "expiryDate", "cvv"},
}

func (s Step) String() string {
	switch s {
	case StepCustomer:
		return "Customer Information"
	case StepShipping:
		return "Shipping Information"
	case StepPayment:
		return "Payment Information"
	default:
		return "Unknown"
	}
}

// Fields lists the form fields that belong to s, in display order.
func (s Step) Fields() []string {
	return append([]string(nil), stepFields[s]...)
}

func stepOf(field string) Step {
	for step, fields := range stepFields {
		for _, f := range fields {
			if f == field {
				return step
			}
		}
	}
	return 0
}

type Status int

const (
	StatusEditing Status = iota
	StatusProcessing
	StatusSucceeded
)

func (s Status) String() string {
	switch s {
	case StatusEditing:
		return "editing"
	case StatusProcessing:
		return "processing"
	case StatusSucceeded:
		return "success"
	default:
		return "unknown"
	}
}

// StepError blocks a step transition. Fields maps each failing field to its message.
type StepError struct {
	Step   Step
	Fields map[string]string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("Please fix the errors in %s", e.Step)
}

// CompleteFunc receives the order once the simulated processing delay has passed.
type CompleteFunc func(ctx context.Context, order models.OrderData) error

type Flow struct {
	step      Step
	status    Status
	form      models.OrderData
	errors    map[string]string
	validated map[Step]bool

	delay time.Duration
	sleep func(time.Duration)
}

// NewFlow starts a checkout on the customer step. delay is the simulated processing latency.
func NewFlow(delay time.Duration) *Flow {
	return &Flow{
		step:      StepCustomer,
		status:    StatusEditing,
		errors:    make(map[string]string),
		validated: make(map[Step]bool),
		delay:     delay,
		sleep:     time.Sleep,
	}
}

func (f *Flow) Step() Step     { return f.step }
func (f *Flow) Status() Status { return f.status }

// Form returns a copy of the current form values.
func (f *Flow) Form() models.OrderData { return f.form }

// Errors returns a copy of the inline field errors.
func (f *Flow) Errors() map[string]string {
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// SetField records an on-change value and clears that field's inline error.
func (f *Flow) SetField(field, value string) error {
	if !KnownField(field) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if f.status != StatusEditing {
		return ErrNotEditing
	}
	setFieldValue(&f.form, field, value)
	delete(f.errors, field)
	f.validated[stepOf(field)] = false
	return nil
}

// BlurField validates a single field and records or clears its inline error.
func (f *Flow) BlurField(field string) (string, error) {
	msg, err := ValidateField(field, fieldValue(&f.form, field))
	if err != nil {
		return "", err
	}
	if msg == "" {
		delete(f.errors, field)
	} else {
		f.errors[field] = msg
	}
	return msg, nil
}

func (f *Flow) validateStep(step Step) error {
	failed := make(map[string]string)
	for _, field := range stepFields[step] {
		msg, err := f.BlurField(field)
		if err != nil {
			return err
		}
		if msg != "" {
			failed[field] = msg
		}
	}
	if len(failed) > 0 {
		f.validated[step] = false
		return &StepError{Step: step, Fields: failed}
	}
	f.validated[step] = true
	return nil
}

// CanEnter reports whether every step before step has been validated.
func (f *Flow) CanEnter(step Step) bool {
	for s := StepCustomer; s < step; s++ {
		if !f.validated[s] {
			return false
		}
	}
	return step >= StepCustomer && step <= StepPayment
}

// NextStep validates the current step, and any earlier step invalidated by an edit,
// and moves forward only if every field passes.
func (f *Flow) NextStep() error {
	if f.status != StatusEditing {
		return ErrNotEditing
	}
	if f.step == StepPayment {
		return ErrLastStep
	}
	if err := f.recheckEarlierSteps(); err != nil {
		return err
	}
	if err := f.validateStep(f.step); err != nil {
		return err
	}
	f.step++
	return nil
}

// recheckEarlierSteps validates every step before the current one that was edited
// since it was passed, and sends the visitor back to the first that fails.
func (f *Flow) recheckEarlierSteps() error {
	for s := StepCustomer; s < f.step; s++ {
		if f.validated[s] {
			continue
		}
		if err := f.validateStep(s); err != nil {
			f.step = s
			return err
		}
	}
	return nil
}

// PrevStep always succeeds while editing and never re-validates.
func (f *Flow) PrevStep() {
	if f.status == StatusEditing && f.step > StepCustomer {
		f.step--
	}
}

// Submit re-validates the payment fields, and any earlier step edited since it was
// passed, then waits out the processing delay and hands the order to complete.
func (f *Flow) Submit(ctx context.Context, complete CompleteFunc) error {
	if f.status != StatusEditing {
		return ErrNotEditing
	}
	if f.step != StepPayment {
		return ErrNotOnPaymentStep
	}
	if err := f.recheckEarlierSteps(); err != nil {
		return err
	}
	if err := f.validateStep(StepPayment); err != nil {
		return err
	}

	f.status = StatusProcessing
	f.sleep(f.delay)

	if err := complete(ctx, f.form); err != nil {
		f.status = StatusEditing
		return err
	}
	f.status = StatusSucceeded
	return nil
}

// ShouldRedirectToCart is true when there is nothing to check out and no order is in flight.
func (f *Flow) ShouldRedirectToCart(cartEmpty bool) bool {
	return cartEmpty && f.status == StatusEditing
}

// Snapshot is the persisted form of a Flow. Payment details are never included.
type Snapshot struct {
	Step      Step
	Status    Status
	Customer  models.CustomerInfo
	Shipping  models.ShippingInfo
	Errors    map[string]string
	Validated []Step
}

func (f *Flow) Snapshot() Snapshot {
	s := Snapshot{
		Step:     f.step,
		Status:   f.status,
		Customer: f.form.Customer,
		Shipping: f.form.Shipping,
		Errors:   f.Errors(),
	}
	for step := StepCustomer; step <= StepPayment; step++ {
		if f.validated[step] {
			s.Validated = append(s.Validated, step)
		}
	}
	return s
}

// Restore rebuilds a Flow from a snapshot. A snapshot taken mid-processing comes back editable.
func Restore(s Snapshot, delay time.Duration) *Flow {
	f := NewFlow(delay)
	if s.Step >= StepCustomer && s.Step <= StepPayment {
		f.step = s.Step
	}
	f.status = s.Status
	if f.status == StatusProcessing {
		f.status = StatusEditing
	}
	f.form.Customer = s.Customer
	f.form.Shipping = s.Shipping
	for k, v := range s.Errors {
		f.errors[k] = v
	}
	for _, step := range s.Validated {
		f.validated[step] = true
	}
	f.validated[StepPayment] = false
	return f
}
