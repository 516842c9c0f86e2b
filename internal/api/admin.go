package api

import (
	"context"
	"net/url"

	"github.com/padup/padup/internal/session"
)

// ListAdmins returns the admin accounts.
func (c *Client) ListAdmins(ctx context.Context) ([]Admin, error) {
	var out List[Admin]
	if err := c.Get(ctx, "/admin/admins", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAdmin creates an admin account and returns the server's message.
func (c *Client) CreateAdmin(ctx context.Context, a NewAdmin) (string, error) {
	var out messageResponse
	if err := c.Post(ctx, "/admin/create-admin", a, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// AdminUpdate is the body of PUT /admin/update-admin/{id}. Empty fields are
// left unchanged.
type AdminUpdate struct {
	Name  string       `json:"name,omitempty"`
	Email string       `json:"email,omitempty"`
	Role  session.Role `json:"role,omitempty"`
}

// UpdateAdmin changes an admin account.
func (c *Client) UpdateAdmin(ctx context.Context, id string, u AdminUpdate) (string, error) {
	var out messageResponse
	if err := c.Put(ctx, "/admin/update-admin/"+url.PathEscape(id), u, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// DeleteAdmin removes an admin account.
func (c *Client) DeleteAdmin(ctx context.Context, id string) (string, error) {
	var out messageResponse
	if err := c.Delete(ctx, "/admin/delete-admin/"+url.PathEscape(id), &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
