package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/ux"
)

func newCommunityCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "community",
		Short:       "Read and write on the community feed",
		Annotations: route(router.PathCommunity),
	}
	cmd.AddCommand(
		newCommunityListCmd(rt),
		newCommunityPostCmd(rt),
		newCommunityCommentsCmd(rt),
		newCommunityCommentCmd(rt),
		newCommunityLikeCmd(rt),
	)
	return cmd
}

func newCommunityListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := loadFeed(cmd.Context(), rt)
			if err != nil {
				return err
			}
			return rt.out.show(posts, postTable(posts))
		},
	}
}

func newCommunityPostCmd(rt *runtime) *cobra.Command {
	var content string
	var images []string

	cmd := &cobra.Command{
		Use:   "post [text]",
		Short: "Publish a post",
		Long: `Publish a post with text, images or both.

Example:
  padup community post "Loved my stay in Lekki" --image view.jpg`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app
			if content == "" {
				content = strings.Join(args, " ")
			}

			var post *api.Post
			err := p.spin("Publishing", func() error {
				var err error
				post, err = a.Feed.Publish(cmd.Context(), content, images)
				return err
			})
			if err != nil {
				return err
			}
			if p.format != "text" {
				return p.render(post)
			}
			return p.success("Post published (" + post.ID.String() + ")")
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "post text")
	cmd.Flags().StringArrayVar(&images, "image", nil, "image file to attach (repeatable)")
	return cmd
}

func newCommunityCommentsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "comments <post-id>",
		Short: "Show the replies to a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			var comments []api.Comment
			err := p.spin("Loading comments", func() error {
				var err error
				comments, err = a.Feed.Comments(cmd.Context(), args[0])
				return err
			})
			if err != nil {
				return err
			}
			return p.show(comments, commentList(comments))
		},
	}
}

func newCommunityCommentCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <text>",
		Short: "Reply to a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app

			var comments []api.Comment
			err := p.spin("Posting comment", func() error {
				var err error
				comments, err = a.Feed.Comment(cmd.Context(), args[0], strings.Join(args[1:], " "))
				return err
			})
			if err != nil {
				return err
			}
			if p.format != "text" {
				return p.render(comments)
			}
			return p.success(fmt.Sprintf("Comment added (%d on this post)", len(comments)))
		},
	}
}

func newCommunityLikeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like a post, or take the like back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, a := rt.out, rt.app
			ctx := cmd.Context()

			if _, err := loadFeed(ctx, rt); err != nil {
				return err
			}
			var post api.Post
			err := p.spin("Updating like", func() error {
				var err error
				post, err = a.Feed.ToggleLike(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			if p.format != "text" {
				return p.render(post)
			}
			verb := "Unliked"
			if post.Liked {
				verb = "Liked"
			}
			return p.success(fmt.Sprintf("%s post %s (%d likes)", verb, post.ID.String(), post.Likes))
		},
	}
}

func loadFeed(ctx context.Context, rt *runtime) ([]api.Post, error) {
	var posts []api.Post
	err := rt.out.spin("Loading feed", func() error {
		var err error
		posts, err = rt.app.Feed.Load(ctx)
		return err
	})
	return posts, err
}

type postTable []api.Post

func (t postTable) Table() ux.Table {
	table := ux.Table{Headers: []string{"ID", "AUTHOR", "POST", "LIKES", "COMMENTS"}, Empty: "No posts yet"}
	for _, post := range t {
		likes := strconv.Itoa(post.Likes)
		if post.Liked {
			likes += " ♥"
		}
		text := post.Content
		if n := len(post.Images); n > 0 {
			text = strings.TrimSpace(fmt.Sprintf("%s [%d image(s)]", text, n))
		}
		table.Rows = append(table.Rows, []string{
			post.ID.String(),
			post.UserName,
			truncate(text, 60),
			likes,
			strconv.Itoa(len(post.Comments)),
		})
	}
	return table
}

type commentList []api.Comment

func (c commentList) String() string {
	if len(c) == 0 {
		return "No comments yet"
	}
	lines := make([]string, 0, len(c))
	for _, comment := range c {
		name := comment.UserName
		if name == "" {
			name = "anonymous"
		}
		lines = append(lines, name+": "+comment.Comment)
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
