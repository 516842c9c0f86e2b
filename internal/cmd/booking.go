package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/marketplace"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/tui"
)

func newBookCmd(rt *runtime) *cobra.Command {
	var d marketplace.BookingDraft
	var pay, yes bool

	cmd := &cobra.Command{
		Use:   "book <slug>",
		Short: "Book a shortlet",
		Long: `Book a shortlet for the given dates. The total is the number of nights
times the nightly price. With --pay a hosted checkout is started for the total
and its URL printed; finish paying in the browser, then run
'padup pay verify <reference>'.

Example:
  padup book lekki-loft --name "Ada Obi" --email ada@example.com --phone 0801234567 \
    --check-in 2026-12-01 --check-out 2026-12-04 --guests 2 --pay`,
		Annotations: route(router.PathBooking),
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app
			ctx := cmd.Context()

			var prop *api.Property
			err := p.spin("Loading shortlet", func() error {
				var err error
				prop, err = a.Catalog.BySlug(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			d.Property = *prop

			if sess, ok := a.Sessions.Get(ctx); ok {
				if d.FullName == "" {
					d.FullName = sess.User.Name
				}
				if d.Email == "" {
					d.Email = sess.User.Email
				}
			}
			if d.FullName, err = p.input(d.FullName, "name", tui.Prompt{Message: "Full name", Required: true}); err != nil {
				return err
			}
			if d.Email, err = p.input(d.Email, "email", tui.Prompt{Message: "Email", Required: true}); err != nil {
				return err
			}
			if d.Phone, err = p.input(d.Phone, "phone", tui.Prompt{Message: "Phone", Required: true}); err != nil {
				return err
			}
			if d.CheckIn, err = p.input(d.CheckIn, "check-in", datePrompt("Check-in")); err != nil {
				return err
			}
			if d.CheckOut, err = p.input(d.CheckOut, "check-out", datePrompt("Check-out")); err != nil {
				return err
			}
			if err := d.Validate(); err != nil {
				return err
			}

			if p.format == "text" {
				if err := p.render(bookingSummary(&d)); err != nil {
					return err
				}
			}
			ok, err := p.confirm("Confirm booking?", yes || !p.interactive())
			if err != nil || !ok {
				return err
			}

			var resp *api.BookingResponse
			err = p.spin("Booking", func() error {
				resp, err = a.Booker.Book(ctx, &d)
				return err
			})
			if err != nil {
				return err
			}

			result := bookingResult{Booking: resp, Nights: d.Nights(), Total: d.Total()}
			if pay {
				err = p.spin("Starting checkout", func() error {
					result.Payment, err = a.Booker.Pay(ctx, d.Total(), d.Email)
					return err
				})
				if err != nil {
					return err
				}
			}
			return p.show(result, result)
		},
	}

	f := cmd.Flags()
	f.StringVar(&d.FullName, "name", "", "guest full name (defaults to the signed-in user)")
	f.StringVar(&d.Email, "email", "", "guest email (defaults to the signed-in user)")
	f.StringVar(&d.Phone, "phone", "", "guest phone number")
	f.StringVar(&d.CheckIn, "check-in", "", "check-in date, YYYY-MM-DD")
	f.StringVar(&d.CheckOut, "check-out", "", "check-out date, YYYY-MM-DD")
	f.IntVar(&d.Guests, "guests", 1, "number of guests")
	f.BoolVar(&pay, "pay", false, "start a checkout for the total after booking")
	f.BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newPayCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "pay",
		Short:       "Start or verify a checkout",
		Annotations: route(router.PathBooking),
	}
	cmd.AddCommand(newPayInitCmd(rt), newPayVerifyCmd(rt))
	return cmd
}

func newPayInitCmd(rt *runtime) *cobra.Command {
	var amount float64
	var email string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Start a hosted checkout and print its URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app
			ctx := cmd.Context()

			if email == "" {
				if sess, ok := a.Sessions.Get(ctx); ok {
					email = sess.User.Email
				}
			}
			var checkout *api.PaymentInit
			err := p.spin("Starting checkout", func() error {
				var err error
				checkout, err = a.Booker.Pay(ctx, amount, email)
				return err
			})
			if err != nil {
				return err
			}
			return p.show(checkout, paymentView(checkout))
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount to charge")
	cmd.Flags().StringVar(&email, "email", "", "payer email (defaults to the signed-in user)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newPayVerifyCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <reference>",
		Short: "Check the outcome of a checkout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			var v *api.PaymentVerification
			err := p.spin("Verifying payment", func() error {
				var err error
				v, err = a.Booker.Verify(cmd.Context(), args[0])
				return err
			})
			if err != nil {
				return err
			}

			view := kv{{"Status", v.Status}, {"Reference", args[0]}}
			if v.Reference != "" {
				view[1][1] = v.Reference
			}
			if amt := v.Amount.Float(); amt > 0 {
				view = append(view, [2]string{"Amount", tui.FormatPrice(amt)})
			}
			if v.Message != "" {
				view = append(view, [2]string{"Message", v.Message})
			}
			return p.show(v, view)
		},
	}
}

func bookingSummary(d *marketplace.BookingDraft) kv {
	return kv{
		{"Shortlet", d.Property.Name},
		{"Dates", d.CheckIn + " to " + d.CheckOut},
		{"Nights", strconv.Itoa(d.Nights())},
		{"Guests", strconv.Itoa(d.Guests)},
		{"Price/night", tui.FormatPrice(d.Property.Price.Float())},
		{"Total", tui.FormatPrice(d.Total())},
	}
}

type bookingResult struct {
	Booking *api.BookingResponse `json:"booking" yaml:"booking"`
	Nights  int                  `json:"nights" yaml:"nights"`
	Total   float64              `json:"total" yaml:"total"`
	Payment *api.PaymentInit     `json:"payment,omitempty" yaml:"payment,omitempty"`
}

func (r bookingResult) String() string {
	view := kv{{"Booking reference", r.Booking.BookingReference}}
	if r.Booking.Message != "" {
		view = append(view, [2]string{"Message", r.Booking.Message})
	}
	if r.Payment != nil {
		view = append(view, paymentView(r.Payment)...)
	}
	return view.String()
}

func paymentView(pi *api.PaymentInit) kv {
	view := kv{{"Checkout URL", pi.AuthorizationURL}}
	if pi.Reference != "" {
		view = append(view, [2]string{"Payment reference", pi.Reference})
	}
	return view
}

func datePrompt(message string) tui.Prompt {
	return tui.Prompt{
		Message:     message,
		Placeholder: marketplace.DateLayout,
		Required:    true,
		Check: func(s string) error {
			if _, err := time.Parse(marketplace.DateLayout, s); err != nil {
				return fmt.Errorf("use %s", marketplace.DateLayout)
			}
			return nil
		},
	}
}
