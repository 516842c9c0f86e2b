package marketplace

import (
	"context"
	"strings"
	"sync"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/log"
	"github.com/padup/padup/internal/metrics"
)

// CommunityAPI is the part of the API client the feed uses.
type CommunityAPI interface {
	ListPosts(ctx context.Context) ([]api.Post, error)
	CreatePost(ctx context.Context, content string, images []string) (*api.Post, error)
	ListComments(ctx context.Context, postID string) ([]api.Comment, error)
	AddComment(ctx context.Context, postID, comment string) error
	ToggleLike(ctx context.Context, postID string) (bool, error)
}

// Feed is the local view of the community feed. Likes are applied
// optimistically and rolled back if the server refuses them.
type Feed struct {
	api     CommunityAPI
	metrics *metrics.Metrics
	logger  *log.Logger

	mu    sync.Mutex
	posts []api.Post
}

func NewFeed(a CommunityAPI, m *metrics.Metrics, logger *log.Logger) *Feed {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Feed{api: a, metrics: m, logger: logger.With("component", "community")}
}

// Posts returns a copy of the local feed.
func (f *Feed) Posts() []api.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Post(nil), f.posts...)
}

// Load replaces the local feed with the server's.
func (f *Feed) Load(ctx context.Context) ([]api.Post, error) {
	posts, err := f.api.ListPosts(ctx)
	if err != nil {
		return nil, errors.Wrap(codeOr(err, errors.ErrCodeAPIResponse), api.MessageOf(err, "Failed to load posts"), err)
	}
	f.mu.Lock()
	f.posts = posts
	f.mu.Unlock()
	return f.Posts(), nil
}

// Publish creates a post. A post needs text or at least one image.
func (f *Feed) Publish(ctx context.Context, content string, images []string) (*api.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" && len(images) == 0 {
		return nil, errors.New(errors.ErrCodeValidationRequired, "Write something or attach an image")
	}
	post, err := f.api.CreatePost(ctx, content, images)
	if err != nil {
		return nil, errors.Wrap(codeOr(err, errors.ErrCodeAPIResponse), api.MessageOf(err, "Failed to create post"), err)
	}
	f.mu.Lock()
	f.posts = append([]api.Post{*post}, f.posts...)
	f.mu.Unlock()
	return post, nil
}

// Comments fetches the replies to a post.
func (f *Feed) Comments(ctx context.Context, postID string) ([]api.Comment, error) {
	comments, err := f.api.ListComments(ctx, postID)
	if err != nil {
		return nil, errors.Wrap(codeOr(err, errors.ErrCodeAPIResponse), api.MessageOf(err, "Failed to load comments"), err)
	}
	return comments, nil
}

// Comment adds a reply and returns the refreshed replies.
func (f *Feed) Comment(ctx context.Context, postID, text string) ([]api.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New(errors.ErrCodeValidationRequired, "Comment cannot be empty")
	}
	if err := f.api.AddComment(ctx, postID, text); err != nil {
		return nil, errors.Wrap(codeOr(err, errors.ErrCodeAPIResponse), api.MessageOf(err, "Failed to add comment"), err)
	}
	comments, err := f.Comments(ctx, postID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	if i := f.index(postID); i >= 0 {
		f.posts[i].Comments = comments
	}
	f.mu.Unlock()
	return comments, nil
}

// ToggleLike flips the like on a post in the local feed, then asks the
// server. The server's answer decides the final state; on error the local
// change is undone.
func (f *Feed) ToggleLike(ctx context.Context, postID string) (api.Post, error) {
	f.mu.Lock()
	i := f.index(postID)
	if i < 0 {
		f.mu.Unlock()
		return api.Post{}, errors.New(errors.ErrCodeValidationInvalid, "post "+postID+" is not in the feed")
	}
	before := f.posts[i]
	f.posts[i] = withLike(before, !before.Liked)
	f.mu.Unlock()

	liked, err := f.api.ToggleLike(ctx, postID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if i = f.index(postID); i < 0 {
		return api.Post{}, errors.New(errors.ErrCodeValidationInvalid, "post "+postID+" left the feed")
	}
	if err != nil {
		f.posts[i] = before
		f.record("rolled_back")
		f.logger.WarnContext(ctx, "like toggle failed, rolled back", "post", postID, "error", err)
		return before, errors.Wrap(codeOr(err, errors.ErrCodeAPIResponse), api.MessageOf(err, "Failed to update like"), err)
	}
	f.posts[i] = withLike(before, liked)
	f.record("confirmed")
	return f.posts[i], nil
}

// withLike sets the liked flag, moving the count only if the flag changed.
func withLike(p api.Post, liked bool) api.Post {
	if p.Liked == liked {
		return p
	}
	p.Liked = liked
	if liked {
		p.Likes++
	} else if p.Likes > 0 {
		p.Likes--
	}
	return p
}

func (f *Feed) index(postID string) int {
	for i := range f.posts {
		if f.posts[i].ID.String() == postID {
			return i
		}
	}
	return -1
}

func (f *Feed) record(result string) {
	if f.metrics != nil {
		f.metrics.LikeToggles.WithLabelValues(result).Inc()
	}
}
