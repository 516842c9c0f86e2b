package marketplace

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/errors"
)

// fakeAPI implements every marketplace API interface. Unset funcs fail the
// call with a plain error.
type fakeAPI struct {
	listProperties func(ctx context.Context) ([]api.Property, error)
	propertyBySlug func(ctx context.Context, slug string) (*api.Property, error)

	createBooking     func(ctx context.Context, req api.BookingRequest) (*api.BookingResponse, error)
	initializePayment func(ctx context.Context, amount float64, email string) (*api.PaymentInit, error)
	verifyPayment     func(ctx context.Context, reference string) (*api.PaymentVerification, error)

	submitKYC         func(ctx context.Context, s api.KYCSubmission) (string, error)
	myKYCStatus       func(ctx context.Context) (string, error)
	listKYC           func(ctx context.Context) ([]api.KYCRecord, error)
	setKYCStatus      func(ctx context.Context, id, status string) (string, error)
	signedDocumentURL func(ctx context.Context, id, kind string) (string, error)

	listPosts    func(ctx context.Context) ([]api.Post, error)
	createPost   func(ctx context.Context, content string, images []string) (*api.Post, error)
	listComments func(ctx context.Context, postID string) ([]api.Comment, error)
	addComment   func(ctx context.Context, postID, comment string) error
	toggleLike   func(ctx context.Context, postID string) (bool, error)

	calls atomic.Int32
}

var errUnset = errors.New(errors.ErrCodeAPINetwork, "not stubbed")

func (f *fakeAPI) ListProperties(ctx context.Context) ([]api.Property, error) {
	f.calls.Add(1)
	if f.listProperties == nil {
		return nil, errUnset
	}
	return f.listProperties(ctx)
}

func (f *fakeAPI) PropertyBySlug(ctx context.Context, slug string) (*api.Property, error) {
	f.calls.Add(1)
	if f.propertyBySlug == nil {
		return nil, errUnset
	}
	return f.propertyBySlug(ctx, slug)
}

func (f *fakeAPI) CreateBooking(ctx context.Context, req api.BookingRequest) (*api.BookingResponse, error) {
	f.calls.Add(1)
	if f.createBooking == nil {
		return nil, errUnset
	}
	return f.createBooking(ctx, req)
}

func (f *fakeAPI) InitializePayment(ctx context.Context, amount float64, email string) (*api.PaymentInit, error) {
	f.calls.Add(1)
	if f.initializePayment == nil {
		return nil, errUnset
	}
	return f.initializePayment(ctx, amount, email)
}

func (f *fakeAPI) VerifyPayment(ctx context.Context, reference string) (*api.PaymentVerification, error) {
	f.calls.Add(1)
	if f.verifyPayment == nil {
		return nil, errUnset
	}
	return f.verifyPayment(ctx, reference)
}

func (f *fakeAPI) SubmitKYC(ctx context.Context, s api.KYCSubmission) (string, error) {
	f.calls.Add(1)
	if f.submitKYC == nil {
		return "", errUnset
	}
	return f.submitKYC(ctx, s)
}

func (f *fakeAPI) MyKYCStatus(ctx context.Context) (string, error) {
	f.calls.Add(1)
	if f.myKYCStatus == nil {
		return "", errUnset
	}
	return f.myKYCStatus(ctx)
}

func (f *fakeAPI) ListKYC(ctx context.Context) ([]api.KYCRecord, error) {
	f.calls.Add(1)
	if f.listKYC == nil {
		return nil, errUnset
	}
	return f.listKYC(ctx)
}

func (f *fakeAPI) SetKYCStatus(ctx context.Context, id, status string) (string, error) {
	f.calls.Add(1)
	if f.setKYCStatus == nil {
		return "", errUnset
	}
	return f.setKYCStatus(ctx, id, status)
}

func (f *fakeAPI) SignedDocumentURL(ctx context.Context, id, kind string) (string, error) {
	f.calls.Add(1)
	if f.signedDocumentURL == nil {
		return "", errUnset
	}
	return f.signedDocumentURL(ctx, id, kind)
}

func (f *fakeAPI) ListPosts(ctx context.Context) ([]api.Post, error) {
	f.calls.Add(1)
	if f.listPosts == nil {
		return nil, errUnset
	}
	return f.listPosts(ctx)
}

func (f *fakeAPI) CreatePost(ctx context.Context, content string, images []string) (*api.Post, error) {
	f.calls.Add(1)
	if f.createPost == nil {
		return nil, errUnset
	}
	return f.createPost(ctx, content, images)
}

func (f *fakeAPI) ListComments(ctx context.Context, postID string) ([]api.Comment, error) {
	f.calls.Add(1)
	if f.listComments == nil {
		return nil, errUnset
	}
	return f.listComments(ctx, postID)
}

func (f *fakeAPI) AddComment(ctx context.Context, postID, comment string) error {
	f.calls.Add(1)
	if f.addComment == nil {
		return errUnset
	}
	return f.addComment(ctx, postID, comment)
}

func (f *fakeAPI) ToggleLike(ctx context.Context, postID string) (bool, error) {
	f.calls.Add(1)
	if f.toggleLike == nil {
		return false, errUnset
	}
	return f.toggleLike(ctx, postID)
}

// serverError mimics a non-2xx response carrying a message.
func serverError(status int, msg string) error {
	return errors.Wrap(errors.ErrCodeAPIResponse, msg, &api.APIError{
		StatusCode: status,
		Message:    msg,
		Method:     http.MethodPost,
		Path:       "/test",
	})
}

func writeFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))
	return path
}
