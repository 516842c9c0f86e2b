package api

import (
	"context"
	"net/url"

	"github.com/padup/padup/internal/errors"
)

// ListProperties returns the published shortlets.
func (c *Client) ListProperties(ctx context.Context) ([]Property, error) {
	var out List[Property]
	if err := c.Get(ctx, "/properties/public", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PropertyBySlug returns one published shortlet.
func (c *Client) PropertyBySlug(ctx context.Context, slug string) (*Property, error) {
	var out Property
	if err := c.Get(ctx, "/properties/public/slug/"+url.PathEscape(slug), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOwnProperties returns the listings managed by the signed-in owner.
func (c *Client) ListOwnProperties(ctx context.Context) ([]Property, error) {
	var out List[Property]
	if err := c.Get(ctx, "/properties/admin", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProperty uploads a new listing with its images.
func (c *Client) CreateProperty(ctx context.Context, p NewProperty) (*Property, error) {
	if p.Name == "" || p.Address == "" || p.Price == "" {
		return nil, errors.New(errors.ErrCodeValidationRequired, "name, address and price are required")
	}

	form := NewForm().
		Field("name", p.Name).
		Field("address", p.Address).
		Optional("location", p.Location).
		Field("price", p.Price).
		Optional("propertyType", p.PropertyType).
		Optional("bedrooms", p.Bedrooms).
		Optional("bathrooms", p.Bathrooms).
		Optional("maxGuests", p.MaxGuests).
		Optional("status", p.Status).
		Optional("description", p.Description).
		Optional("latitude", p.Latitude).
		Optional("longitude", p.Longitude)
	for _, img := range p.Images {
		form.File("images", img)
	}

	var out Property
	if err := c.PostMultipart(ctx, "/properties", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProperty removes a listing.
func (c *Client) DeleteProperty(ctx context.Context, id string) error {
	return c.Delete(ctx, "/properties/"+url.PathEscape(id), nil)
}
