package marketplace

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/flow"
	"github.com/padup/padup/internal/log"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidateKYC checks an owner verification form before upload. Checks run in
// order and the first failure is reported.
func ValidateKYC(s api.KYCSubmission) error {
	for _, v := range []string{s.FullName, s.Email, s.Phone, s.Address, s.BankName, s.AccountNumber} {
		if strings.TrimSpace(v) == "" {
			return kycInvalid(errors.ErrCodeValidationRequired, "Please fill all fields including bank details", "form")
		}
	}
	if !fileExists(s.IDDocument) {
		return kycInvalid(errors.ErrCodeValidationRequired, "Please upload ID Document", "idDocument")
	}
	if !fileExists(s.OwnershipDocument) {
		return kycInvalid(errors.ErrCodeValidationRequired, "Please upload Ownership Document", "ownershipDocument")
	}
	if !emailPattern.MatchString(s.Email) {
		return kycInvalid(errors.ErrCodeValidationInvalid, "Please enter a valid email address", "email")
	}
	return nil
}

func kycInvalid(code errors.ErrorCode, msg, field string) error {
	return errors.Wrap(code, msg, &flow.ValidationError{Field: field, Problems: []string{msg}})
}

func fileExists(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// KYCAPI is the part of the API client owner verification uses.
type KYCAPI interface {
	SubmitKYC(ctx context.Context, s api.KYCSubmission) (string, error)
	MyKYCStatus(ctx context.Context) (string, error)
	ListKYC(ctx context.Context) ([]api.KYCRecord, error)
	SetKYCStatus(ctx context.Context, id, status string) (string, error)
	SignedDocumentURL(ctx context.Context, id, kind string) (string, error)
}

// KYC drives owner verification for both owners and reviewers.
type KYC struct {
	api    KYCAPI
	logger *log.Logger
	submit flow.Submitter
}

func NewKYC(a KYCAPI, logger *log.Logger) *KYC {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &KYC{api: a, logger: logger}
}

// Submit validates and uploads the form.
func (k *KYC) Submit(ctx context.Context, s api.KYCSubmission) (string, error) {
	if err := ValidateKYC(s); err != nil {
		return "", err
	}
	if !k.submit.TryBegin() {
		return "", flow.ErrSubmitInProgress
	}
	msg, err := k.api.SubmitKYC(ctx, s)
	k.submit.End(err)
	if err != nil {
		return "", errors.Wrap(codeOr(err, errors.ErrCodeAPIResponse), api.MessageOf(err, "KYC submission failed"), err)
	}
	if msg == "" {
		msg = "KYC submitted successfully"
	}
	return msg, nil
}

// Status returns the caller's review status.
func (k *KYC) Status(ctx context.Context) (string, error) {
	status, err := k.api.MyKYCStatus(ctx)
	if err != nil {
		return "", errors.Wrap(codeOr(err, errors.ErrCodeAPIResponse), api.MessageOf(err, "Failed to fetch KYC status"), err)
	}
	return status, nil
}

// List returns every submission for review.
func (k *KYC) List(ctx context.Context) ([]api.KYCRecord, error) {
	recs, err := k.api.ListKYC(ctx)
	if err != nil {
		return nil, errors.Wrap(codeOr(err, errors.ErrCodeAPIResponse), api.MessageOf(err, "Failed to fetch KYC submissions"), err)
	}
	return recs, nil
}

// SetStatus approves or rejects a submission.
func (k *KYC) SetStatus(ctx context.Context, id, status string) (string, error) {
	if strings.TrimSpace(id) == "" || (status != api.KYCApproved && status != api.KYCRejected) {
		return "", errors.New(errors.ErrCodeValidationInvalid, "Invalid KYC ID or status")
	}
	msg, err := k.api.SetKYCStatus(ctx, id, status)
	if err != nil {
		verb := "approve"
		if status == api.KYCRejected {
			verb = "reject"
		}
		return "", errors.Wrap(codeOr(err, errors.ErrCodeAPIResponse), api.MessageOf(err, "Failed to "+verb+" KYC"), err)
	}
	if msg == "" {
		msg = "KYC " + status + " successfully"
	}
	return msg, nil
}

// DocumentURL returns a download URL for a submission's document. It asks
// for a short-lived signed URL and falls back to the stored direct URL.
func (k *KYC) DocumentURL(ctx context.Context, rec api.KYCRecord, kind string) (string, error) {
	if kind != api.DocumentID && kind != api.DocumentOwnership {
		return "", errors.New(errors.ErrCodeValidationInvalid, "document kind must be id or ownership")
	}

	signed, err := k.api.SignedDocumentURL(ctx, rec.ID.String(), kind)
	if err == nil && signed != "" {
		return signed, nil
	}
	k.logger.WarnContext(ctx, "signed URL unavailable, using direct URL", "id", rec.ID, "kind", kind, "error", err)

	direct := rec.IDDocumentURL
	if kind == api.DocumentOwnership {
		direct = rec.OwnershipDocumentURL
	}
	if direct == "" {
		return "", errors.New(errors.ErrCodeAPIResponse, "Unable to download file")
	}
	return direct, nil
}
