package marketplace

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/flow"
)

// DateLayout is the format of check-in and check-out dates.
const DateLayout = "2006-01-02"

// BookingDraft is a booking being filled in for one listing.
type BookingDraft struct {
	Property api.Property
	FullName string
	Email    string
	Phone    string
	CheckIn  string
	CheckOut string
	Guests   int
}

// Nights is the number of nights between check-in and check-out, rounded
// up. It is zero until both dates parse.
func (d *BookingDraft) Nights() int {
	in, err1 := time.Parse(DateLayout, d.CheckIn)
	out, err2 := time.Parse(DateLayout, d.CheckOut)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(math.Ceil(out.Sub(in).Hours() / 24))
}

// Total is nights times the nightly price.
func (d *BookingDraft) Total() float64 {
	return float64(d.Nights()) * d.Property.Price.Float()
}

// Validate checks the draft before it is sent.
func (d *BookingDraft) Validate() error {
	var problems []string
	if strings.TrimSpace(d.FullName) == "" {
		problems = append(problems, "full name is required")
	}
	if !emailPattern.MatchString(strings.TrimSpace(d.Email)) {
		problems = append(problems, "a valid email is required")
	}
	if strings.TrimSpace(d.Phone) == "" {
		problems = append(problems, "phone is required")
	}
	if d.Guests < 1 {
		problems = append(problems, "at least one guest is required")
	}
	if limit := int(d.Property.MaxGuests); limit > 0 && d.Guests > limit {
		problems = append(problems, "too many guests for this shortlet")
	}
	if d.Nights() < 1 {
		problems = append(problems, "check-out must be after check-in (YYYY-MM-DD)")
	}
	if d.Property.ID == "" {
		problems = append(problems, "no shortlet selected")
	}
	if len(problems) > 0 {
		return errors.Wrap(errors.ErrCodeValidationInvalid, "Booking details are incomplete",
			&flow.ValidationError{Field: "booking", Problems: problems})
	}
	return nil
}

// Request builds the API body.
func (d *BookingDraft) Request() api.BookingRequest {
	return api.BookingRequest{
		FullName:      strings.TrimSpace(d.FullName),
		Email:         strings.TrimSpace(d.Email),
		Phone:         strings.TrimSpace(d.Phone),
		CheckIn:       d.CheckIn,
		CheckOut:      d.CheckOut,
		Guests:        d.Guests,
		PropertyID:    d.Property.ID.String(),
		PricePerNight: d.Property.Price.Float(),
	}
}

// BookingAPI is the part of the API client bookings and payments use.
type BookingAPI interface {
	CreateBooking(ctx context.Context, req api.BookingRequest) (*api.BookingResponse, error)
	InitializePayment(ctx context.Context, amount float64, email string) (*api.PaymentInit, error)
	VerifyPayment(ctx context.Context, reference string) (*api.PaymentVerification, error)
}

// Booker submits bookings and starts payments. Each kind of submission is
// guarded against double submits.
type Booker struct {
	api  BookingAPI
	book flow.Submitter
	pay  flow.Submitter
}

func NewBooker(a BookingAPI) *Booker {
	return &Booker{api: a}
}

// Book validates and submits the draft.
func (b *Booker) Book(ctx context.Context, d *BookingDraft) (*api.BookingResponse, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if !b.book.TryBegin() {
		return nil, flow.ErrSubmitInProgress
	}

	resp, err := b.api.CreateBooking(ctx, d.Request())
	b.book.End(err)
	if err != nil {
		return nil, errors.Wrap(codeOr(err, errors.ErrCodeAPIResponse), api.MessageOf(err, "Booking failed"), err)
	}
	return resp, nil
}

// Pay starts a hosted checkout for amount and returns its URL.
func (b *Booker) Pay(ctx context.Context, amount float64, email string) (*api.PaymentInit, error) {
	if amount <= 0 {
		return nil, errors.New(errors.ErrCodeValidationInvalid, "amount must be positive")
	}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return nil, errors.New(errors.ErrCodeValidationInvalid, "a valid email is required")
	}
	if !b.pay.TryBegin() {
		return nil, flow.ErrSubmitInProgress
	}

	resp, err := b.api.InitializePayment(ctx, amount, strings.TrimSpace(email))
	if err != nil {
		b.pay.End(err)
		return nil, errors.Wrap(codeOr(err, errors.ErrCodeAPIResponse), api.MessageOf(err, "Payment initialization failed"), err)
	}
	if resp == nil || resp.AuthorizationURL == "" {
		err = errors.New(errors.ErrCodeAPIResponse, "Failed to initialize payment")
		b.pay.End(err)
		return nil, err
	}
	b.pay.End(nil)
	return resp, nil
}

// Verify reports the outcome of a checkout.
func (b *Booker) Verify(ctx context.Context, reference string) (*api.PaymentVerification, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, errors.New(errors.ErrCodeValidationRequired, "payment reference is required")
	}
	v, err := b.api.VerifyPayment(ctx, reference)
	if err != nil {
		return nil, errors.Wrap(codeOr(err, errors.ErrCodeAPIResponse), api.MessageOf(err, "Failed to verify payment"), err)
	}
	return v, nil
}
