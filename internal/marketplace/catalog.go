package marketplace

import (
	"context"
	"regexp"
	"strings"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/log"
)

// PropertyAPI is the part of the API client the catalog uses.
type PropertyAPI interface {
	ListProperties(ctx context.Context) ([]api.Property, error)
	PropertyBySlug(ctx context.Context, slug string) (*api.Property, error)
}

// Catalog lists published shortlets, refreshing the cache on every
// successful fetch.
type Catalog struct {
	api    PropertyAPI
	cache  *Cache
	logger *log.Logger
}

func NewCatalog(a PropertyAPI, cache *Cache, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Catalog{api: a, cache: cache, logger: logger}
}

// Cached returns the listings from the last successful fetch.
func (c *Catalog) Cached() []api.Property {
	return c.cache.Load()
}

// Refresh fetches the listings and caches them. On failure the cache is
// left untouched.
func (c *Catalog) Refresh(ctx context.Context) ([]api.Property, error) {
	props, err := c.api.ListProperties(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to fetch shortlets", "error", err)
		return nil, errors.Wrap(codeOr(err, errors.ErrCodeAPIResponse), "Failed to load shortlets. Please refresh the page.", err)
	}
	if props == nil {
		props = []api.Property{}
	}
	if err := c.cache.Save(props); err != nil {
		c.logger.WarnContext(ctx, "failed to cache shortlets", "error", err)
	}
	return props, nil
}

// BySlug fetches one listing.
func (c *Catalog) BySlug(ctx context.Context, slug string) (*api.Property, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.New(errors.ErrCodeValidationRequired, "slug is required")
	}
	p, err := c.api.PropertyBySlug(ctx, slug)
	if err != nil {
		return nil, errors.Wrap(codeOr(err, errors.ErrCodeAPIResponse), api.MessageOf(err, "Shortlet not found"), err)
	}
	return p, nil
}

// Search keeps the listings whose address or location contains query,
// ignoring case. An empty query keeps everything.
func Search(props []api.Property, query string) []api.Property {
	q := strings.ToLower(query)
	out := make([]api.Property, 0, len(props))
	for _, p := range props {
		haystack := strings.ToLower(p.Address + " " + p.Location)
		if strings.Contains(haystack, q) {
			out = append(out, p)
		}
	}
	return out
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a listing name into its URL slug:
//
//	"Sea View Apartment, Lekki!" -> "sea-view-apartment-lekki"
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SlugOf returns the listing's slug, deriving it from the name when the API
// did not send one.
func SlugOf(p api.Property) string {
	if p.Slug != "" {
		return p.Slug
	}
	return Slugify(p.Name)
}

func codeOr(err error, fallback errors.ErrorCode) errors.ErrorCode {
	if code := errors.CodeOf(err); code != "" {
		return code
	}
	return fallback
}
