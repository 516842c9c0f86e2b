package api

import (
	"context"
	"net/url"
)

// CreateBooking reserves a shortlet and returns the booking reference.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*BookingResponse, error) {
	var out BookingResponse
	if err := c.Post(ctx, "/bookings", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InitializePayment starts a checkout and returns the hosted payment URL.
func (c *Client) InitializePayment(ctx context.Context, amount float64, email string) (*PaymentInit, error) {
	var out PaymentInit
	body := map[string]any{"amount": amount, "email": email}
	if err := c.Post(ctx, "/payments/initialize", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyPayment checks the outcome of a checkout by its reference.
func (c *Client) VerifyPayment(ctx context.Context, reference string) (*PaymentVerification, error) {
	var out PaymentVerification
	if err := c.Get(ctx, "/payments/verify/"+url.PathEscape(reference), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
