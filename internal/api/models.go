package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/padup/padup/internal/session"
)

// ID is an identifier the API sends as either a string or a number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Number is a numeric value the API sends as either a number or a numeric
// string. Empty strings and null decode as zero.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Float returns n as a float64.
func (n Number) Float() float64 {
	return float64(n)
}

// AuthResponse is returned by the sign-in endpoints.
type AuthResponse struct {
	Token   string       `json:"token"`
	User    session.User `json:"user"`
	Message string       `json:"message,omitempty"`
}

// Session converts the response into a session value.
func (r *AuthResponse) Session() *session.Session {
	return &session.Session{Token: r.Token, User: r.User}
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// VerifyOTPResponse carries the reset token issued for a verified code.
type VerifyOTPResponse struct {
	ResetToken string `json:"resetToken"`
	Message    string `json:"message,omitempty"`
}

// Property is a shortlet listing.
type Property struct {
	ID           ID       `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Slug         string   `json:"slug,omitempty" yaml:"slug,omitempty"`
	Address      string   `json:"address" yaml:"address"`
	Location     string   `json:"location" yaml:"location"`
	Price        Number   `json:"price" yaml:"price"`
	PropertyType string   `json:"propertyType,omitempty" yaml:"property_type,omitempty"`
	Bedrooms     Number   `json:"bedrooms,omitempty" yaml:"bedrooms,omitempty"`
	Bathrooms    Number   `json:"bathrooms,omitempty" yaml:"bathrooms,omitempty"`
	MaxGuests    Number   `json:"max_guests,omitempty" yaml:"max_guests,omitempty"`
	Status       string   `json:"status,omitempty" yaml:"status,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Latitude     Number   `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude    Number   `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Images       []string `json:"images,omitempty" yaml:"images,omitempty"`
	ImageURL     string   `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// UnmarshalJSON accepts both maxGuests and max_guests.
func (p *Property) UnmarshalJSON(data []byte) error {
	type plain Property
	var raw struct {
		plain
		MaxGuestsCamel *Number `json:"maxGuests"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Property(raw.plain)
	if p.MaxGuests == 0 && raw.MaxGuestsCamel != nil {
		p.MaxGuests = *raw.MaxGuestsCamel
	}
	return nil
}

// Cover returns the first image, falling back to image_url.
func (p *Property) Cover() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return p.ImageURL
}

// NewProperty is the form for creating a listing.
type NewProperty struct {
	Name         string
	Address      string
	Location     string
	Price        string
	PropertyType string
	Bedrooms     string
	Bathrooms    string
	MaxGuests    string
	Status       string
	Description  string
	Latitude     string
	Longitude    string
	Images       []string
}

// BookingRequest is the body of POST /bookings.
type BookingRequest struct {
	FullName      string  `json:"full_name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	CheckIn       string  `json:"check_in"`
	CheckOut      string  `json:"check_out"`
	Guests        int     `json:"guests"`
	PropertyID    string  `json:"property_id"`
	PricePerNight float64 `json:"price_per_night"`
}

// BookingResponse carries the reference of a created booking.
type BookingResponse struct {
	BookingReference string `json:"booking_reference" yaml:"booking_reference"`
	Message          string `json:"message,omitempty" yaml:"message,omitempty"`
}

// PaymentInit is the checkout hand-off returned by POST /payments/initialize.
type PaymentInit struct {
	AuthorizationURL string `json:"authorization_url" yaml:"authorization_url"`
	Reference        string `json:"reference,omitempty" yaml:"reference,omitempty"`
	AccessCode       string `json:"access_code,omitempty" yaml:"access_code,omitempty"`
}

// PaymentVerification is the result of GET /payments/verify/{reference}.
type PaymentVerification struct {
	Status    string `json:"status" yaml:"status"`
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`
	Amount    Number `json:"amount,omitempty" yaml:"amount,omitempty"`
	Message   string `json:"message,omitempty" yaml:"message,omitempty"`
}

// KYCSubmission is the owner verification form.
type KYCSubmission struct {
	FullName          string
	Email             string
	Phone             string
	Address           string
	BankName          string
	AccountNumber     string
	IDDocument        string
	OwnershipDocument string
}

// KYCRecord is one submission as seen by reviewers.
type KYCRecord struct {
	ID                   ID     `json:"id" yaml:"id"`
	FullName             string `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	Email                string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone                string `json:"phone,omitempty" yaml:"phone,omitempty"`
	BankName             string `json:"bank_name,omitempty" yaml:"bank_name,omitempty"`
	AccountNumber        string `json:"account_number,omitempty" yaml:"account_number,omitempty"`
	Status               string `json:"status" yaml:"status"`
	IDDocumentURL        string `json:"id_document_url,omitempty" yaml:"id_document_url,omitempty"`
	OwnershipDocumentURL string `json:"ownership_document_url,omitempty" yaml:"ownership_document_url,omitempty"`
}

// Post is a community feed entry.
type Post struct {
	ID       ID       `json:"id" yaml:"id"`
	UserName string   `json:"user_name,omitempty" yaml:"user_name,omitempty"`
	Content  string   `json:"content" yaml:"content"`
	Images   []string `json:"images,omitempty" yaml:"images,omitempty"`
	Liked    bool     `json:"liked" yaml:"liked"`
	Likes    int      `json:"likes" yaml:"likes"`
	Comments Comments `json:"comments,omitempty" yaml:"comments,omitempty"`
}

// Comments is the comment list embedded in a post. Anything other than an
// array (some feeds send a count) decodes as empty.
type Comments []Comment

func (c *Comments) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		*c = nil
		return nil
	}
	var list []Comment
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*c = list
	return nil
}

// Comment is a reply to a post.
type Comment struct {
	ID       ID     `json:"id" yaml:"id"`
	UserName string `json:"user_name" yaml:"user_name"`
	Comment  string `json:"comment" yaml:"comment"`
}

// Admin is an admin account as listed by super admins.
type Admin struct {
	ID    ID           `json:"id" yaml:"id"`
	Name  string       `json:"name" yaml:"name"`
	Email string       `json:"email" yaml:"email"`
	Role  session.Role `json:"role" yaml:"role"`
}

// NewAdmin is the body of POST /admin/create-admin.
type NewAdmin struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// List decodes a bare JSON array or one wrapped as {"data": [...]}. Any
// other shape decodes as empty.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		data = bytes.TrimSpace(wrapped.Data)
	}
	if len(data) == 0 || data[0] != '[' {
		*l = List[T]{}
		return nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}
