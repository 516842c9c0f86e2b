package marketplace

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/flow"
)

func validDraft() *BookingDraft {
	return &BookingDraft{
		Property: api.Property{ID: "9", Price: 25000, MaxGuests: 3},
		FullName: "Ada Obi",
		Email:    "ada@example.com",
		Phone:    "+2348000000000",
		CheckIn:  "2026-03-01",
		CheckOut: "2026-03-04",
		Guests:   2,
	}
}

func TestBookingDraft_NightsAndTotal(t *testing.T) {
	d := validDraft()
	assert.Equal(t, 3, d.Nights())
	assert.Equal(t, 75000.0, d.Total())

	d.CheckOut = "not a date"
	assert.Equal(t, 0, d.Nights())
	assert.Equal(t, 0.0, d.Total())

	d.CheckIn, d.CheckOut = "2026-03-04", "2026-03-01"
	assert.Negative(t, d.Nights())
}

func TestBookingDraft_Validate(t *testing.T) {
	require.NoError(t, validDraft().Validate())

	tests := []struct {
		name   string
		mutate func(d *BookingDraft)
	}{
		{"no name", func(d *BookingDraft) { d.FullName = " " }},
		{"bad email", func(d *BookingDraft) { d.Email = "ada@" }},
		{"no phone", func(d *BookingDraft) { d.Phone = "" }},
		{"no guests", func(d *BookingDraft) { d.Guests = 0 }},
		{"too many guests", func(d *BookingDraft) { d.Guests = 4 }},
		{"same day", func(d *BookingDraft) { d.CheckOut = d.CheckIn }},
		{"no property", func(d *BookingDraft) { d.Property.ID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(d)
			err := d.Validate()
			require.Error(t, err)
			assert.True(t, flow.IsValidation(err))
			assert.Equal(t, "Booking details are incomplete", flow.Message(err))
		})
	}
}

func TestBookingDraft_UnlimitedGuestsWhenNoMax(t *testing.T) {
	d := validDraft()
	d.Property.MaxGuests = 0
	d.Guests = 12
	assert.NoError(t, d.Validate())
}

func TestBooker_Book(t *testing.T) {
	var sent api.BookingRequest
	f := &fakeAPI{createBooking: func(_ context.Context, req api.BookingRequest) (*api.BookingResponse, error) {
		sent = req
		return &api.BookingResponse{BookingReference: "BK-1"}, nil
	}}

	resp, err := NewBooker(f).Book(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Equal(t, "BK-1", resp.BookingReference)
	assert.Equal(t, "9", sent.PropertyID)
	assert.Equal(t, 25000.0, sent.PricePerNight)
	assert.Equal(t, 2, sent.Guests)
}

func TestBooker_BookInvalidDraftSendsNothing(t *testing.T) {
	f := &fakeAPI{}
	d := validDraft()
	d.Guests = 0

	_, err := NewBooker(f).Book(context.Background(), d)
	require.Error(t, err)
	assert.Zero(t, f.calls.Load())
}

func TestBooker_BookFailureMessages(t *testing.T) {
	f := &fakeAPI{createBooking: func(context.Context, api.BookingRequest) (*api.BookingResponse, error) {
		return nil, serverError(409, "Dates unavailable")
	}}
	b := NewBooker(f)

	_, err := b.Book(context.Background(), validDraft())
	assert.Equal(t, "Dates unavailable", flow.Message(err))

	f.createBooking = func(context.Context, api.BookingRequest) (*api.BookingResponse, error) {
		return nil, errors.New(errors.ErrCodeAPINetwork, "dial tcp: refused")
	}
	_, err = b.Book(context.Background(), validDraft())
	assert.Equal(t, "Booking failed", flow.Message(err))
	assert.Equal(t, errors.ErrCodeAPINetwork, errors.CodeOf(err))
}

func TestBooker_DoubleBookSendsOnce(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	f := &fakeAPI{createBooking: func(context.Context, api.BookingRequest) (*api.BookingResponse, error) {
		close(entered)
		<-release
		return &api.BookingResponse{BookingReference: "BK-1"}, nil
	}}
	b := NewBooker(f)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = b.Book(context.Background(), validDraft())
	}()
	<-entered

	_, err := b.Book(context.Background(), validDraft())
	assert.ErrorIs(t, err, flow.ErrSubmitInProgress)

	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestBooker_Pay(t *testing.T) {
	f := &fakeAPI{initializePayment: func(_ context.Context, amount float64, email string) (*api.PaymentInit, error) {
		assert.Equal(t, 75000.0, amount)
		assert.Equal(t, "ada@example.com", email)
		return &api.PaymentInit{AuthorizationURL: "https://checkout.example.com/abc", Reference: "ref-1"}, nil
	}}

	checkout, err := NewBooker(f).Pay(context.Background(), 75000, " ada@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "ref-1", checkout.Reference)
}

func TestBooker_PayFailures(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		email   string
		stub    func(context.Context, float64, string) (*api.PaymentInit, error)
		message string
	}{
		{"zero amount", 0, "a@b.co", nil, "amount must be positive"},
		{"bad email", 10, "nope", nil, "a valid email is required"},
		{"server message", 10, "a@b.co", func(context.Context, float64, string) (*api.PaymentInit, error) {
			return nil, serverError(400, "Amount too small")
		}, "Amount too small"},
		{"no message", 10, "a@b.co", func(context.Context, float64, string) (*api.PaymentInit, error) {
			return nil, errUnset
		}, "Payment initialization failed"},
		{"missing url", 10, "a@b.co", func(context.Context, float64, string) (*api.PaymentInit, error) {
			return &api.PaymentInit{Reference: "r"}, nil
		}, "Failed to initialize payment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBooker(&fakeAPI{initializePayment: tt.stub})
			_, err := b.Pay(context.Background(), tt.amount, tt.email)
			require.Error(t, err)
			assert.Equal(t, tt.message, flow.Message(err))
		})
	}
}

func TestBooker_Verify(t *testing.T) {
	f := &fakeAPI{verifyPayment: func(_ context.Context, ref string) (*api.PaymentVerification, error) {
		return &api.PaymentVerification{Status: "success", Reference: ref}, nil
	}}
	b := NewBooker(f)

	v, err := b.Verify(context.Background(), " ref-1 ")
	require.NoError(t, err)
	assert.Equal(t, "ref-1", v.Reference)

	_, err = b.Verify(context.Background(), "")
	assert.Equal(t, errors.ErrCodeValidationRequired, errors.CodeOf(err))

	f.verifyPayment = nil
	_, err = b.Verify(context.Background(), "ref-2")
	assert.Equal(t, "Failed to verify payment", flow.Message(err))
}
