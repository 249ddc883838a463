package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-api/models"
)

func newTestFlow() (*Flow, *[]time.Duration) {
	var slept []time.Duration
	f := NewFlow(1500 * time.Millisecond)
	f.sleep = func(d time.Duration) { slept = append(slept, d) }
	return f, &slept
}

func fill(t *testing.T, f *Flow, values map[string]string) {
	t.Helper()
	for field, value := range values {
		require.NoError(t, f.SetField(field, value))
	}
}

var (
	validCustomer = map[string]string{
		"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com", "phone": "555-123-4567",
	}
	validShipping = map[string]string{
		"address": "1 Analytical Way", "city": "Springfield", "state": "IL", "zipCode": "62701", "country": "US",
	}
	validPayment = map[string]string{
		"cardHolder": "Ada Lovelace", "cardNumber": "4111 1111 1111 1111", "expiryDate": "12/29", "cvv": "123",
	}
)

func advanceToPayment(t *testing.T, f *Flow) {
	t.Helper()
	fill(t, f, validCustomer)
	require.NoError(t, f.NextStep())
	fill(t, f, validShipping)
	require.NoError(t, f.NextStep())
	require.Equal(t, StepPayment, f.Step())
}

func TestNextStep_BlockedByEmptyEmail(t *testing.T) {
	f, _ := newTestFlow()
	fill(t, f, validCustomer)
	require.NoError(t, f.SetField("email", ""))

	err := f.NextStep()

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StepCustomer, stepErr.Step)
	assert.Equal(t, "Please fix the errors in Customer Information", stepErr.Error())
	assert.Equal(t, map[string]string{"email": "Email is required"}, stepErr.Fields)
	assert.Equal(t, StepCustomer, f.Step())
	assert.Equal(t, "Email is required", f.Errors()["email"])
}

func TestNextStep_Advances(t *testing.T) {
	f, _ := newTestFlow()
	fill(t, f, validCustomer)

	require.NoError(t, f.NextStep())

	assert.Equal(t, StepShipping, f.Step())
	assert.Empty(t, f.Errors())
	assert.True(t, f.CanEnter(StepShipping))
	assert.False(t, f.CanEnter(StepPayment))
}

func TestNextStep_OnlyChecksCurrentStep(t *testing.T) {
	f, _ := newTestFlow()
	fill(t, f, validCustomer)
	fill(t, f, map[string]string{"zipCode": "bad"})

	require.NoError(t, f.NextStep())
	assert.NotContains(t, f.Errors(), "zipCode")
}

func TestNextStep_RechecksEditedEarlierStep(t *testing.T) {
	f, _ := newTestFlow()
	fill(t, f, validCustomer)
	require.NoError(t, f.NextStep())
	fill(t, f, validShipping)
	require.NoError(t, f.SetField("email", "not-an-email"))

	err := f.NextStep()

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StepCustomer, stepErr.Step)
	assert.Equal(t, map[string]string{"email": "Please enter a valid email address"}, stepErr.Fields)
	assert.Equal(t, StepCustomer, f.Step())

	require.NoError(t, f.SetField("email", "ada@example.com"))
	require.NoError(t, f.NextStep())
	require.NoError(t, f.NextStep())
	assert.Equal(t, StepPayment, f.Step())
}

func TestNextStep_EditedEarlierStepStillValidAdvances(t *testing.T) {
	f, _ := newTestFlow()
	fill(t, f, validCustomer)
	require.NoError(t, f.NextStep())
	fill(t, f, validShipping)
	require.NoError(t, f.SetField("firstName", "Augusta"))

	require.NoError(t, f.NextStep())
	assert.Equal(t, StepPayment, f.Step())
}

func TestNextStep_FromPayment(t *testing.T) {
	f, _ := newTestFlow()
	advanceToPayment(t, f)

	assert.ErrorIs(t, f.NextStep(), ErrLastStep)
}

func TestPrevStep_NoRevalidation(t *testing.T) {
	f, _ := newTestFlow()
	fill(t, f, validCustomer)
	require.NoError(t, f.NextStep())
	require.NoError(t, f.SetField("city", ""))

	f.PrevStep()
	assert.Equal(t, StepCustomer, f.Step())
	assert.Empty(t, f.Errors())

	f.PrevStep()
	assert.Equal(t, StepCustomer, f.Step())
}

func TestSetField_ClearsErrorAndInvalidatesStep(t *testing.T) {
	f, _ := newTestFlow()
	fill(t, f, validCustomer)
	require.NoError(t, f.NextStep())
	f.PrevStep()

	require.NoError(t, f.SetField("email", "nope"))
	assert.False(t, f.CanEnter(StepShipping))

	msg, err := f.BlurField("email")
	require.NoError(t, err)
	assert.Equal(t, "Please enter a valid email address", msg)
	assert.Contains(t, f.Errors(), "email")

	require.NoError(t, f.SetField("email", "ada@example.com"))
	assert.NotContains(t, f.Errors(), "email")
}

func TestSetField_UnknownField(t *testing.T) {
	f, _ := newTestFlow()
	assert.ErrorIs(t, f.SetField("nickname", "x"), ErrUnknownField)
}

func TestSubmit_CompletesOrder(t *testing.T) {
	f, slept := newTestFlow()
	advanceToPayment(t, f)
	fill(t, f, validPayment)

	var got models.OrderData
	err := f.Submit(context.Background(), func(_ context.Context, order models.OrderData) error {
		assert.Equal(t, StatusProcessing, f.Status())
		got = order
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, f.Status())
	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, *slept)
	assert.Equal(t, "Ada", got.Customer.FirstName)
	assert.Equal(t, "62701", got.Shipping.ZipCode)
	assert.Equal(t, "4111 1111 1111 1111", got.Payment.CardNumber)
}

func TestSubmit_InvalidPaymentBlocks(t *testing.T) {
	f, slept := newTestFlow()
	advanceToPayment(t, f)
	fill(t, f, validPayment)
	require.NoError(t, f.SetField("cvv", "12"))

	called := false
	err := f.Submit(context.Background(), func(context.Context, models.OrderData) error {
		called = true
		return nil
	})

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StepPayment, stepErr.Step)
	assert.Contains(t, stepErr.Fields, "cvv")
	assert.False(t, called)
	assert.Empty(t, *slept)
	assert.Equal(t, StatusEditing, f.Status())
}

func TestSubmit_RechecksEditedEarlierStep(t *testing.T) {
	f, slept := newTestFlow()
	advanceToPayment(t, f)
	fill(t, f, validPayment)
	require.NoError(t, f.SetField("zipCode", "bad"))

	called := false
	err := f.Submit(context.Background(), func(context.Context, models.OrderData) error {
		called = true
		return nil
	})

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StepShipping, stepErr.Step)
	assert.Equal(t, StepShipping, f.Step())
	assert.Equal(t, StatusEditing, f.Status())
	assert.False(t, called)
	assert.Empty(t, *slept)
}

func TestSubmit_RequiresPaymentStep(t *testing.T) {
	f, _ := newTestFlow()
	fill(t, f, validPayment)

	err := f.Submit(context.Background(), func(context.Context, models.OrderData) error { return nil })
	assert.ErrorIs(t, err, ErrNotOnPaymentStep)
}

func TestSubmit_CallbackFailureReturnsToEditing(t *testing.T) {
	f, _ := newTestFlow()
	advanceToPayment(t, f)
	fill(t, f, validPayment)
	boom := errors.New("boom")

	err := f.Submit(context.Background(), func(context.Context, models.OrderData) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusEditing, f.Status())
}

func TestSubmit_OnlyOnce(t *testing.T) {
	f, _ := newTestFlow()
	advanceToPayment(t, f)
	fill(t, f, validPayment)
	done := func(context.Context, models.OrderData) error { return nil }

	require.NoError(t, f.Submit(context.Background(), done))
	assert.ErrorIs(t, f.Submit(context.Background(), done), ErrNotEditing)
	assert.ErrorIs(t, f.NextStep(), ErrNotEditing)
	assert.ErrorIs(t, f.SetField("cvv", "999"), ErrNotEditing)
}

func TestShouldRedirectToCart(t *testing.T) {
	f, _ := newTestFlow()
	assert.True(t, f.ShouldRedirectToCart(true))
	assert.False(t, f.ShouldRedirectToCart(false))

	advanceToPayment(t, f)
	fill(t, f, validPayment)
	require.NoError(t, f.Submit(context.Background(), func(context.Context, models.OrderData) error { return nil }))

	assert.False(t, f.ShouldRedirectToCart(true))
}

func TestSnapshot_DropsPaymentDetails(t *testing.T) {
	f, _ := newTestFlow()
	advanceToPayment(t, f)
	fill(t, f, validPayment)

	s := f.Snapshot()
	restored := Restore(s, time.Second)

	assert.Equal(t, StepPayment, restored.Step())
	assert.Equal(t, "Ada", restored.Form().Customer.FirstName)
	assert.Equal(t, "Springfield", restored.Form().Shipping.City)
	assert.Equal(t, models.PaymentInfo{}, restored.Form().Payment)
	assert.True(t, restored.CanEnter(StepPayment))
}

func TestRestore_ProcessingComesBackEditable(t *testing.T) {
	restored := Restore(Snapshot{Step: StepPayment, Status: StatusProcessing}, 0)

	assert.Equal(t, StatusEditing, restored.Status())
}
