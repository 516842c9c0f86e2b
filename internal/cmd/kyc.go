package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/tui"
	"github.com/padup/padup/internal/ux"
)

const (
	pathAdminKYC      = "/admin/kyc"
	pathSuperAdminKYC = "/super-admin/kyc"
)

func newKYCCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kyc",
		Short: "Owner verification",
		Long: `Property owners submit identity and ownership documents for verification.
Super admins list, review, approve and reject submissions.`,
	}
	cmd.AddCommand(
		newKYCSubmitCmd(rt),
		newKYCStatusCmd(rt),
		newKYCListCmd(rt),
		newKYCReviewCmd(rt),
		newKYCDecideCmd(rt, "approve", api.KYCApproved),
		newKYCDecideCmd(rt, "reject", api.KYCRejected),
		newKYCDownloadCmd(rt),
	)
	return cmd
}

func newKYCSubmitCmd(rt *runtime) *cobra.Command {
	var s api.KYCSubmission

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit verification details and documents",
		Long: `Submit your details, payout bank account and two documents: a means of
identification and proof of ownership of the property.

Example:
  padup kyc submit --name "Ada Obi" --email ada@example.com --phone 0801234567 \
    --address "1 Admiralty Way" --bank "First Bank" --account 0123456789 \
    --id-document passport.pdf --ownership-document deed.pdf`,
		Annotations: route(pathAdminKYC),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			var msg string
			err := p.spin("Uploading documents", func() error {
				var err error
				msg, err = a.KYC.Submit(cmd.Context(), s)
				return err
			})
			if err != nil {
				return err
			}
			return p.success(msg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&s.FullName, "name", "", "full name")
	f.StringVar(&s.Email, "email", "", "email")
	f.StringVar(&s.Phone, "phone", "", "phone number")
	f.StringVar(&s.Address, "address", "", "residential address")
	f.StringVar(&s.BankName, "bank", "", "bank name")
	f.StringVar(&s.AccountNumber, "account", "", "account number")
	f.StringVar(&s.IDDocument, "id-document", "", "identification document file")
	f.StringVar(&s.OwnershipDocument, "ownership-document", "", "proof of ownership file")
	return cmd
}

func newKYCStatusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "status",
		Short:       "Show the status of your submission",
		Annotations: route(pathAdminKYC),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			var status string
			err := p.spin("Loading status", func() error {
				var err error
				status, err = a.KYC.Status(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			return p.show(map[string]string{"status": status}, "KYC status: "+status)
		},
	}
}

func newKYCListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "list",
		Short:       "List all submissions (super admin)",
		Annotations: route(pathSuperAdminKYC),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := listKYC(cmd.Context(), rt)
			if err != nil {
				return err
			}
			return rt.out.show(records, kycTable(records))
		},
	}
}

func newKYCReviewCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Review submissions in a full-screen view (super admin)",
		Long: `Walk through submissions and mark each approved (a) or rejected (r).
Verdicts are sent when you leave the review with q.`,
		Annotations: route(pathSuperAdminKYC),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app
			ctx := cmd.Context()

			if !p.interactive() {
				return errors.New(errors.ErrCodeValidationInvalid, "review needs an interactive terminal").
					WithSuggestion("Use 'padup kyc approve <id>' or 'padup kyc reject <id>'")
			}
			records, err := listKYC(ctx, rt)
			if err != nil {
				return err
			}
			decisions, err := tui.RunKYCReview(records, p.styles)
			if err != nil {
				return err
			}

			failed := 0
			for _, d := range decisions {
				msg, err := a.KYC.SetStatus(ctx, d.ID, d.Status)
				if err != nil {
					failed++
					p.warn(fmt.Sprintf("%s: %s", d.ID, ux.UserMessage(err)))
					continue
				}
				if err := p.success(fmt.Sprintf("%s: %s", d.ID, msg)); err != nil {
					return err
				}
			}
			if failed > 0 {
				return errors.New(errors.ErrCodeAPIResponse, fmt.Sprintf("%d of %d verdicts were not saved", failed, len(decisions)))
			}
			return nil
		},
	}
}

func newKYCDecideCmd(rt *runtime, verb, status string) *cobra.Command {
	return &cobra.Command{
		Use:         verb + " <id>",
		Short:       fmt.Sprintf("Mark a submission %s (super admin)", status),
		Annotations: route(pathSuperAdminKYC),
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			var msg string
			err := p.spin("Saving verdict", func() error {
				var err error
				msg, err = a.KYC.SetStatus(cmd.Context(), args[0], status)
				return err
			})
			if err != nil {
				return err
			}
			return p.success(msg)
		},
	}
}

func newKYCDownloadCmd(rt *runtime) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Print a download link for a submitted document (super admin)",
		Long: `Print a download link for one document of a submission. A short-lived
signed link is preferred; the stored link is used when signing fails.`,
		Annotations: route(pathSuperAdminKYC),
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app
			ctx := cmd.Context()

			records, err := listKYC(ctx, rt)
			if err != nil {
				return err
			}
			var rec *api.KYCRecord
			for i := range records {
				if records[i].ID.String() == args[0] {
					rec = &records[i]
					break
				}
			}
			if rec == nil {
				return errors.New(errors.ErrCodeValidationInvalid, "no KYC submission with id "+args[0]).
					WithSuggestion("List submissions with 'padup kyc list'")
			}

			link, err := a.KYC.DocumentURL(ctx, *rec, kind)
			if err != nil {
				return err
			}
			return p.show(map[string]string{"id": args[0], "kind": kind, "url": link}, link)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", api.DocumentID, "document to fetch: id or ownership")
	return cmd
}

func listKYC(ctx context.Context, rt *runtime) ([]api.KYCRecord, error) {
	var records []api.KYCRecord
	err := rt.out.spin("Loading submissions", func() error {
		var err error
		records, err = rt.app.KYC.List(ctx)
		return err
	})
	return records, err
}

type kycTable []api.KYCRecord

func (t kycTable) Table() ux.Table {
	table := ux.Table{Headers: []string{"ID", "NAME", "EMAIL", "BANK", "STATUS"}, Empty: "No KYC submissions"}
	for _, r := range t {
		table.Rows = append(table.Rows, []string{r.ID.String(), r.FullName, r.Email, r.BankName, r.Status})
	}
	return table
}
