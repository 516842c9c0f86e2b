package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/padup/padup/internal/errors"
)

//go:embed openapi.yaml
var contractDocument []byte

func init() {
	// Uploaded files are sent with their own media types.
	for _, ct := range []string{"image/jpeg", "image/png", "image/webp", "image/gif", "application/pdf"} {
		openapi3filter.RegisterBodyDecoder(ct, openapi3filter.FileBodyDecoder)
	}
}

// Contract is the OpenAPI description of the marketplace API. It checks that
// requests built by this package match what the server accepts.
type Contract struct {
	doc    *openapi3.T
	router routers.Router
}

// LoadContract parses the embedded API description.
func LoadContract() (*Contract, error) {
	return loadContract(func(l *openapi3.Loader) (*openapi3.T, error) {
		return l.LoadFromData(contractDocument)
	})
}

// LoadContractFile parses an API description from disk.
func LoadContractFile(path string) (*Contract, error) {
	return loadContract(func(l *openapi3.Loader) (*openapi3.T, error) {
		return l.LoadFromFile(path)
	})
}

func loadContract(load func(*openapi3.Loader) (*openapi3.T, error)) (*Contract, error) {
	loader := openapi3.NewLoader()

	doc, err := load(loader)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to load API contract", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "invalid API contract", err)
	}

	// Paths are relative to the API base; match any host.
	doc.Servers = nil
	r, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to build API contract router", err)
	}
	return &Contract{doc: doc, router: r}, nil
}

// Operation is one method and path pair in the contract.
type Operation struct {
	ID     string
	Method string
	Path   string
	Public bool
}

// Operations lists every operation sorted by path then method.
func (c *Contract) Operations() []Operation {
	var ops []Operation
	for path, item := range c.doc.Paths.Map() {
		for method, op := range item.Operations() {
			public := op.Security != nil && len(*op.Security) == 0
			ops = append(ops, Operation{ID: op.OperationID, Method: method, Path: path, Public: public})
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return ops[i].Method < ops[j].Method
	})
	return ops
}

// ValidateRequest checks req against the contract. basePath is stripped from
// the request path before matching. The body is read and req.Body is replaced
// with an equivalent reader.
func (c *Contract) ValidateRequest(req *http.Request, basePath string) error {
	r := req.Clone(req.Context())
	if basePath != "" && strings.HasPrefix(r.URL.Path, basePath) {
		u := *r.URL
		u.Path = strings.TrimPrefix(u.Path, basePath)
		u.RawPath = strings.TrimPrefix(u.RawPath, basePath)
		r.URL = &u
	}

	route, params, err := c.router.FindRoute(r)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAPIRequest,
			fmt.Sprintf("no API operation for %s %s", r.Method, r.URL.Path), err)
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: params,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: bearerAuthentication,
			MultiError:         true,
		},
	}
	err = openapi3filter.ValidateRequest(r.Context(), input)
	req.Body = r.Body
	if err != nil {
		return errors.Wrap(errors.ErrCodeAPIRequest,
			fmt.Sprintf("%s %s violates the API contract", r.Method, route.Path), err)
	}
	return nil
}

func bearerAuthentication(_ context.Context, in *openapi3filter.AuthenticationInput) error {
	if in.SecurityScheme == nil || in.SecurityScheme.Type != "http" || in.SecurityScheme.Scheme != "bearer" {
		return nil
	}
	h := in.RequestValidationInput.Request.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")) == "" {
		return fmt.Errorf("missing bearer token")
	}
	return nil
}
