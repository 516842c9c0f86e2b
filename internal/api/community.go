package api

import (
	"context"
	"net/url"
)

// ListPosts returns the community feed.
func (c *Client) ListPosts(ctx context.Context) ([]Post, error) {
	var out List[Post]
	if err := c.Get(ctx, "/community", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePost publishes a post with optional images.
func (c *Client) CreatePost(ctx context.Context, content string, images []string) (*Post, error) {
	form := NewForm().Field("content", content)
	for _, img := range images {
		form.File("images", img)
	}

	var out Post
	if err := c.PostMultipart(ctx, "/community", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListComments returns the comments on a post.
func (c *Client) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	var out List[Comment]
	if err := c.Get(ctx, "/community/"+url.PathEscape(postID)+"/comments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddComment replies to a post.
func (c *Client) AddComment(ctx context.Context, postID, comment string) error {
	return c.Post(ctx, "/community/"+url.PathEscape(postID)+"/comments", map[string]string{"comment": comment}, nil)
}

// ToggleLike flips the caller's like on a post and returns the new state.
func (c *Client) ToggleLike(ctx context.Context, postID string) (bool, error) {
	var out struct {
		Liked bool `json:"liked"`
	}
	if err := c.Post(ctx, "/community/"+url.PathEscape(postID)+"/like", nil, &out); err != nil {
		return false, err
	}
	return out.Liked, nil
}
