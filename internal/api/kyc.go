package api

import (
	"context"
	"net/url"
)

// KYC review statuses.
const (
	KYCNotSubmitted = "Not Submitted"
	KYCApproved     = "approved"
	KYCRejected     = "rejected"
)

// KYC document kinds accepted by SignedDocumentURL.
const (
	DocumentID        = "id"
	DocumentOwnership = "ownership"
)

// SubmitKYC uploads an owner verification form with both documents.
// Field validation is the caller's job.
func (c *Client) SubmitKYC(ctx context.Context, s KYCSubmission) (string, error) {
	form := NewForm().
		Field("fullName", s.FullName).
		Field("email", s.Email).
		Field("phone", s.Phone).
		Field("address", s.Address).
		Field("bankName", s.BankName).
		Field("accountNumber", s.AccountNumber).
		File("idDocument", s.IDDocument).
		File("ownershipDocument", s.OwnershipDocument)

	var out messageResponse
	if err := c.PostMultipart(ctx, "/kyc/submit", form, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// MyKYCStatus returns the review status of the caller's submission.
func (c *Client) MyKYCStatus(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.Get(ctx, "/kyc/my-status", &out); err != nil {
		return "", err
	}
	if out.Status == "" {
		return KYCNotSubmitted, nil
	}
	return out.Status, nil
}

// ListKYC returns every submission.
func (c *Client) ListKYC(ctx context.Context) ([]KYCRecord, error) {
	var out List[KYCRecord]
	if err := c.Get(ctx, "/kyc/all", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetKYCStatus approves or rejects a submission.
func (c *Client) SetKYCStatus(ctx context.Context, id, status string) (string, error) {
	var out messageResponse
	if err := c.Put(ctx, "/kyc/"+url.PathEscape(id)+"/status", map[string]string{"status": status}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// SignedDocumentURL returns a short-lived download URL for a KYC document.
func (c *Client) SignedDocumentURL(ctx context.Context, id, kind string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	path := "/kyc/signed-url/" + url.PathEscape(id) + "/" + url.PathEscape(kind)
	if err := c.Get(ctx, path, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
