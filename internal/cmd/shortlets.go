package cmd

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/marketplace"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/tui"
	"github.com/padup/padup/internal/ux"
)

func newShortletsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "shortlets",
		Aliases: []string{"shortlet"},
		Short:   "Browse available shortlets",
	}
	cmd.AddCommand(
		newShortletsListCmd(rt),
		newShortletsShowCmd(rt),
		newShortletsSearchCmd(rt),
		newShortletsBrowseCmd(rt),
	)
	return cmd
}

func newShortletsListCmd(rt *runtime) *cobra.Command {
	var offline, dismiss bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available shortlets",
		Long: `List available shortlets. The last fetched list is cached in the padup
home directory and shown when the API cannot be reached, or straight away
with --offline.`,
		Annotations: route(router.PathHome),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app
			ctx := cmd.Context()

			var props []api.Property
			if offline {
				props = a.Catalog.Cached()
			} else {
				var err error
				if props, err = loadListings(ctx, rt); err != nil {
					return err
				}
			}

			if err := p.show(props, propertyTable(props)); err != nil {
				return err
			}
			return authPrompt(ctx, rt, dismiss)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "show the cached list without contacting the API")
	cmd.Flags().BoolVar(&dismiss, "dismiss-prompt", false, "stop suggesting sign-up on this machine")
	return cmd
}

func newShortletsShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one shortlet",
		Long: `Show one shortlet by its slug, the lowercase hyphenated name shown by
'padup shortlets list'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app
			ctx := cmd.Context()

			slug := args[0]
			if _, err := a.Guard.Enter(ctx, "/shortlets/"+slug); err != nil {
				return err
			}

			var prop *api.Property
			err := p.spin("Loading shortlet", func() error {
				var err error
				prop, err = a.Catalog.BySlug(ctx, slug)
				return err
			})
			if err != nil {
				return err
			}
			return p.show(prop, propertyView(*prop))
		},
	}
}

func newShortletsSearchCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "search <query>",
		Short:       "Search shortlets by location or address",
		Annotations: route(router.PathHome),
		Args:        cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := loadListings(cmd.Context(), rt)
			if err != nil {
				return err
			}
			found := marketplace.Search(props, strings.Join(args, " "))
			return rt.out.show(found, propertyTable(found))
		},
	}
}

func newShortletsBrowseCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:         "browse",
		Short:       "Browse shortlets in a full-screen view",
		Annotations: route(router.PathHome),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := rt.out
			props, err := loadListings(cmd.Context(), rt)
			if err != nil {
				return err
			}
			if !p.interactive() {
				return p.show(props, propertyTable(props))
			}

			chosen, err := tui.Browse(props, p.styles)
			if err != nil {
				return err
			}
			if chosen == nil {
				return nil
			}
			p.notice("Book it with: padup book " + marketplace.SlugOf(*chosen) + " --check-in YYYY-MM-DD --check-out YYYY-MM-DD")
			return nil
		},
	}
}

// loadListings fetches the public listings, falling back to the cache when
// the request fails and the cache has something to show.
func loadListings(ctx context.Context, rt *runtime) ([]api.Property, error) {
	p, a := rt.out, rt.app

	var props []api.Property
	err := p.spin("Loading shortlets", func() error {
		var err error
		props, err = a.Catalog.Refresh(ctx)
		return err
	})
	if err == nil {
		return props, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	if cached := a.Catalog.Cached(); len(cached) > 0 {
		p.warn("showing cached shortlets: " + ux.UserMessage(err))
		return cached, nil
	}
	return nil, err
}

// authPrompt suggests creating an account to anonymous visitors until they
// dismiss the suggestion.
func authPrompt(ctx context.Context, rt *runtime, dismiss bool) error {
	p, a := rt.out, rt.app
	if dismiss {
		return a.Prompt.Dismiss()
	}
	if !a.Prompt.ShouldShow(ctx) {
		return nil
	}
	if !p.interactive() {
		p.notice("Sign up to book shortlets: padup signup (hide this with --dismiss-prompt)")
		return nil
	}

	yes, err := tui.Confirm("Create an account to book shortlets?", true)
	if err != nil {
		return err
	}
	if yes {
		p.notice("Run 'padup signup', or 'padup login' if you already have an account")
		return nil
	}
	return a.Prompt.Dismiss()
}

type propertyTable []api.Property

func (t propertyTable) Table() ux.Table {
	table := ux.Table{
		Headers: []string{"SLUG", "NAME", "LOCATION", "PRICE/NIGHT", "GUESTS"},
		Empty:   "No shortlets found",
	}
	for _, prop := range t {
		guests := "-"
		if n := int(prop.MaxGuests); n > 0 {
			guests = strconv.Itoa(n)
		}
		table.Rows = append(table.Rows, []string{
			marketplace.SlugOf(prop),
			prop.Name,
			prop.Location,
			tui.FormatPrice(prop.Price.Float()),
			guests,
		})
	}
	return table
}

func propertyView(prop api.Property) kv {
	out := kv{
		{"Name", prop.Name},
		{"Slug", marketplace.SlugOf(prop)},
		{"Address", prop.Address},
		{"Location", prop.Location},
		{"Price/night", tui.FormatPrice(prop.Price.Float())},
	}
	if prop.PropertyType != "" {
		out = append(out, [2]string{"Type", prop.PropertyType})
	}
	if n := int(prop.Bedrooms); n > 0 {
		out = append(out, [2]string{"Bedrooms", strconv.Itoa(n)})
	}
	if n := int(prop.Bathrooms); n > 0 {
		out = append(out, [2]string{"Bathrooms", strconv.Itoa(n)})
	}
	if n := int(prop.MaxGuests); n > 0 {
		out = append(out, [2]string{"Max guests", strconv.Itoa(n)})
	}
	if prop.Status != "" {
		out = append(out, [2]string{"Status", prop.Status})
	}
	if prop.Description != "" {
		out = append(out, [2]string{"Description", prop.Description})
	}
	if cover := prop.Cover(); cover != "" {
		out = append(out, [2]string{"Image", cover})
	}
	return out
}
