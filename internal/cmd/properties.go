package cmd

import (
	"github.com/spf13/cobra"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/tui"
	"github.com/padup/padup/internal/ux"
)

const pathAdminProperties = "/admin/properties"

func newPropertiesCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "properties",
		Aliases:     []string{"property"},
		Short:       "Manage your listings (admin)",
		Annotations: route(pathAdminProperties),
	}
	cmd.AddCommand(
		newPropertiesListCmd(rt),
		newPropertiesCreateCmd(rt),
		newPropertiesDeleteCmd(rt),
	)
	return cmd
}

func newPropertiesListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your listings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			var props []api.Property
			err := p.spin("Loading listings", func() error {
				var err error
				props, err = a.Client.ListOwnProperties(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			return p.show(props, ownPropertyTable(props))
		},
	}
}

func newPropertiesCreateCmd(rt *runtime) *cobra.Command {
	var np api.NewProperty

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a listing",
		Long: `Create a listing. Images are uploaded from local files; repeat --image for
each one.

Example:
  padup properties create --name "Lekki Loft" --address "1 Admiralty Way" \
    --location Lekki --price 45000 --max-guests 4 --image front.jpg --image room.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			var created *api.Property
			err := p.spin("Uploading listing", func() error {
				var err error
				created, err = a.Client.CreateProperty(cmd.Context(), np)
				return err
			})
			if err != nil {
				return err
			}
			if p.format != "text" {
				return p.render(created)
			}
			return p.success("Property created: " + created.Name + " (" + created.ID.String() + ")")
		},
	}

	f := cmd.Flags()
	f.StringVar(&np.Name, "name", "", "listing name")
	f.StringVar(&np.Address, "address", "", "street address")
	f.StringVar(&np.Location, "location", "", "area or city")
	f.StringVar(&np.Price, "price", "", "price per night")
	f.StringVar(&np.PropertyType, "type", "", "property type, e.g. apartment")
	f.StringVar(&np.Bedrooms, "bedrooms", "", "number of bedrooms")
	f.StringVar(&np.Bathrooms, "bathrooms", "", "number of bathrooms")
	f.StringVar(&np.MaxGuests, "max-guests", "", "maximum number of guests")
	f.StringVar(&np.Status, "status", "available", "listing status")
	f.StringVar(&np.Description, "description", "", "description")
	f.StringVar(&np.Latitude, "latitude", "", "map latitude")
	f.StringVar(&np.Longitude, "longitude", "", "map longitude")
	f.StringArrayVar(&np.Images, "image", nil, "image file to upload (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newPropertiesDeleteCmd(rt *runtime) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			ok, err := p.confirm("Delete property "+args[0]+"?", yes)
			if err != nil || !ok {
				return err
			}
			err = p.spin("Deleting listing", func() error {
				return a.Client.DeleteProperty(cmd.Context(), args[0])
			})
			if err != nil {
				return err
			}
			return p.success("Property deleted")
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

type ownPropertyTable []api.Property

func (t ownPropertyTable) Table() ux.Table {
	table := ux.Table{
		Headers: []string{"ID", "NAME", "LOCATION", "PRICE/NIGHT", "STATUS"},
		Empty:   "No properties yet",
	}
	for _, prop := range t {
		table.Rows = append(table.Rows, []string{
			prop.ID.String(),
			prop.Name,
			prop.Location,
			tui.FormatPrice(prop.Price.Float()),
			prop.Status,
		})
	}
	return table
}
