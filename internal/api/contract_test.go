package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padup/padup/internal/errors"
)

func TestLoadContract(t *testing.T) {
	c, err := LoadContract()
	require.NoError(t, err)

	ops := c.Operations()
	require.NotEmpty(t, ops)

	byID := make(map[string]Operation, len(ops))
	for _, op := range ops {
		byID[op.ID] = op
	}
	assert.True(t, byID["login"].Public)
	assert.True(t, byID["listPublicProperties"].Public)
	assert.False(t, byID["me"].Public)
	assert.False(t, byID["setKYCStatus"].Public)
	assert.Equal(t, http.MethodPut, byID["setKYCStatus"].Method)
}

func TestLoadContractFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("openapi: 3.0.3\npaths: [\n"), 0o600))

	_, err := LoadContractFile(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.CodeOf(err))
}

// contractServer validates every incoming request and answers with a
// plausible body for the path.
type contractServer struct {
	contract *Contract

	mu         sync.Mutex
	violations []string
	seen       int
}

func (s *contractServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := s.contract.ValidateRequest(r, "/api")
	s.mu.Lock()
	s.seen++
	if err != nil {
		s.violations = append(s.violations, err.Error())
	}
	s.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api")
	switch {
	case path == "/auth/login" || path == "/auth/google":
		writeJSON(w, http.StatusOK, map[string]any{"token": "t", "user": map[string]any{"id": 1, "role": "user"}})
	case path == "/auth/me":
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "name": "Ada", "role": "admin"})
	case path == "/auth/password/verify-otp":
		writeJSON(w, http.StatusOK, map[string]any{"resetToken": "rt"})
	case path == "/properties/public" || path == "/properties/admin" || path == "/kyc/all" ||
		path == "/community" && r.Method == http.MethodGet || path == "/admin/admins" ||
		strings.HasSuffix(path, "/comments") && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, []any{})
	case strings.HasPrefix(path, "/kyc/signed-url/"):
		writeJSON(w, http.StatusOK, map[string]any{"url": "https://cdn/doc"})
	case path == "/bookings":
		writeJSON(w, http.StatusCreated, map[string]any{"booking_reference": "BK-1"})
	case path == "/payments/initialize":
		writeJSON(w, http.StatusOK, map[string]any{"authorization_url": "https://pay/x"})
	case strings.HasSuffix(path, "/like"):
		writeJSON(w, http.StatusOK, map[string]any{"liked": true})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
	}
}

func TestClient_RequestsMatchContract(t *testing.T) {
	contract, err := LoadContract()
	require.NoError(t, err)

	cs := &contractServer{contract: contract}
	h := newHarness(t, cs)
	h.signIn(t, "tok")

	dir := t.TempDir()
	img := filepath.Join(dir, "front.jpg")
	doc := filepath.Join(dir, "id.pdf")
	require.NoError(t, os.WriteFile(img, []byte("jpeg"), 0o600))
	require.NoError(t, os.WriteFile(doc, []byte("%PDF-1.4"), 0o600))

	ctx := context.Background()
	c := h.client
	calls := []func() error{
		func() error { _, err := c.Login(ctx, "ada@example.com", "pw"); return err },
		func() error { _, err := c.GoogleLogin(ctx, "header.payload.sig"); return err },
		func() error {
			_, err := c.Signup(ctx, SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "Passw0rd!", ConfirmPassword: "Passw0rd!"})
			return err
		},
		func() error { _, err := c.Me(ctx); return err },
		func() error { _, err := c.ChangePassword(ctx, "old", "N3wPassword!"); return err },
		func() error { _, err := c.RequestOTP(ctx, "ada@example.com"); return err },
		func() error { _, err := c.VerifyOTP(ctx, "ada@example.com", "123456"); return err },
		func() error { _, err := c.ResetPassword(ctx, "ada@example.com", "rt", "N3wPassword!"); return err },
		func() error { _, err := c.ListProperties(ctx); return err },
		func() error { _, err := c.PropertyBySlug(ctx, "sea-view-lekki"); return err },
		func() error { _, err := c.ListOwnProperties(ctx); return err },
		func() error {
			_, err := c.CreateProperty(ctx, NewProperty{Name: "Sea View", Address: "1 Beach Rd", Price: "25000", Images: []string{img, img}})
			return err
		},
		func() error {
			_, err := c.CreateProperty(ctx, NewProperty{
				Name: "Sea View", Address: "1 Beach Rd", Location: "Lekki", Price: "25000", PropertyType: "apartment",
				Bedrooms: "2", Bathrooms: "2", MaxGuests: "4", Status: "available", Description: "Ocean front",
				Latitude: "6.43", Longitude: "3.47", Images: []string{img},
			})
			return err
		},
		func() error { return c.DeleteProperty(ctx, "9") },
		func() error {
			_, err := c.CreateBooking(ctx, BookingRequest{
				FullName: "Ada", Email: "ada@example.com", Phone: "0800", CheckIn: "2026-01-01",
				CheckOut: "2026-01-03", Guests: 2, PropertyID: "9", PricePerNight: 25000,
			})
			return err
		},
		func() error { _, err := c.InitializePayment(ctx, 50000, "ada@example.com"); return err },
		func() error { _, err := c.VerifyPayment(ctx, "ref/with space"); return err },
		func() error {
			_, err := c.SubmitKYC(ctx, KYCSubmission{
				FullName: "Ada", Email: "ada@example.com", Phone: "0800", Address: "1 Beach Rd",
				BankName: "Bank", AccountNumber: "0123456789", IDDocument: doc, OwnershipDocument: doc,
			})
			return err
		},
		func() error { _, err := c.MyKYCStatus(ctx); return err },
		func() error { _, err := c.ListKYC(ctx); return err },
		func() error { _, err := c.SetKYCStatus(ctx, "3", KYCApproved); return err },
		func() error { _, err := c.SignedDocumentURL(ctx, "3", DocumentOwnership); return err },
		func() error { _, err := c.ListPosts(ctx); return err },
		func() error { _, err := c.CreatePost(ctx, "hello", []string{img}); return err },
		func() error { _, err := c.ListComments(ctx, "5"); return err },
		func() error { return c.AddComment(ctx, "5", "nice") },
		func() error { _, err := c.ToggleLike(ctx, "5"); return err },
		func() error { _, err := c.ListAdmins(ctx); return err },
		func() error {
			_, err := c.CreateAdmin(ctx, NewAdmin{Name: "Bo", Email: "bo@example.com", Password: "pw"})
			return err
		},
		func() error { _, err := c.UpdateAdmin(ctx, "4", AdminUpdate{Name: "Bo Smith"}); return err },
		func() error { _, err := c.DeleteAdmin(ctx, "4"); return err },
	}

	for i, call := range calls {
		require.NoError(t, call(), "call %d", i)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	assert.Equal(t, len(calls), cs.seen)
	assert.Empty(t, cs.violations)
}

func TestContract_RejectsMalformedRequests(t *testing.T) {
	contract, err := LoadContract()
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		bearer bool
	}{
		{"login without password", http.MethodPost, "/api/auth/login", `{"email":"a@b.co"}`, false},
		{"login with bad email", http.MethodPost, "/api/auth/login", `{"email":"nope","password":"x"}`, false},
		{"otp longer than six", http.MethodPost, "/api/auth/password/verify-otp", `{"email":"a@b.co","otp":"1234567"}`, false},
		{"unknown kyc status", http.MethodPut, "/api/kyc/1/status", `{"status":"maybe"}`, true},
		{"unknown document kind", http.MethodGet, "/api/kyc/signed-url/1/passport", ``, true},
		{"profile without token", http.MethodGet, "/api/auth/me", ``, false},
		{"unknown path", http.MethodGet, "/api/nowhere", ``, true},
		{"wrong method", http.MethodGet, "/api/auth/login", ``, false},
		{"empty admin update", http.MethodPut, "/api/admin/update-admin/4", `{}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *bytes.Reader
			if tt.body != "" {
				body = bytes.NewReader([]byte(tt.body))
			} else {
				body = bytes.NewReader(nil)
			}
			req := httptest.NewRequest(tt.method, "http://padup.test"+tt.path, body)
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			if tt.bearer {
				req.Header.Set("Authorization", "Bearer tok")
			}

			err := contract.ValidateRequest(req, "/api")
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeAPIRequest, errors.CodeOf(err))
		})
	}
}

func TestContract_ValidateRequestKeepsBody(t *testing.T) {
	contract, err := LoadContract()
	require.NoError(t, err)

	payload := `{"email":"a@b.co","password":"x"}`
	req := httptest.NewRequest(http.MethodPost, "http://padup.test/api/auth/login", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	require.NoError(t, contract.ValidateRequest(req, "/api"))

	var buf bytes.Buffer
	_, err = buf.ReadFrom(req.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, buf.String())
}
