package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ashureev/agri-advisor/internal/app"
)

// Posts renders the community posts panel. The view itself is gated on
// can_post; like and comment actions gate on their own flags.
type Posts struct{}

// NewPosts creates the posts renderer.
func NewPosts() *Posts {
	return &Posts{}
}

func (p *Posts) Render(ctx context.Context, env *app.Env) (app.Panel, error) {
	posts, err := env.Gateway.Posts(ctx)
	if err != nil {
		return app.Panel{}, err
	}

	var b strings.Builder
	b.WriteString(heading.Render("Community Posts") + "\n")

	if len(posts) == 0 {
		b.WriteString("No posts yet. Be the first to share something.\n")
	}
	for _, post := range posts {
		var pb strings.Builder
		author := post.Author
		if author == "" {
			author = fmt.Sprintf("User %d", post.AuthorID)
		}
		pb.WriteString(subheading.Render(fmt.Sprintf("#%d %s", post.ID, author)) + "\n")
		pb.WriteString(post.Content + "\n")
		pb.WriteString(muted.Render(fmt.Sprintf("%d likes · %d comments · %s",
			post.Likes, len(post.Comments), post.CreatedAt.Local().Format("2 Jan 15:04"))))
		for _, comment := range post.Comments {
			pb.WriteString("\n  " + muted.Render(fmt.Sprintf("User %d: %s", comment.AuthorID, comment.Content)))
		}
		b.WriteString(card.Render(pb.String()) + "\n")
	}

	actions := []app.Action{
		{
			Key:    "n",
			Label:  "new post",
			Prompt: "What's on your mind?",
			Do: func(ctx context.Context, input string) error {
				content := strings.TrimSpace(input)
				if content == "" {
					return nil
				}
				if _, err := env.Gateway.CreatePost(ctx, content); err != nil {
					return err
				}
				return env.Nav.Navigate(ctx, app.ViewPosts, "")
			},
		},
	}
	if env.User.Permissions.CanLikeShare {
		actions = append(actions, app.Action{
			Key:    "k",
			Label:  "like post",
			Prompt: "Post ID to like",
			Do: func(ctx context.Context, input string) error {
				id, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
				if err != nil {
					return fmt.Errorf("invalid post ID %q", input)
				}
				if err := env.Gateway.LikePost(ctx, id); err != nil {
					return err
				}
				return env.Nav.Navigate(ctx, app.ViewPosts, "")
			},
		})
	}
	if env.User.Permissions.CanComment {
		actions = append(actions, app.Action{
			Key:    "c",
			Label:  "comment",
			Prompt: "Comment as <post-id>: <text>",
			Do: func(ctx context.Context, input string) error {
				id, text, err := splitIDPayload(input)
				if err != nil {
					return err
				}
				if _, err := env.Gateway.CommentPost(ctx, id, text); err != nil {
					return err
				}
				return env.Nav.Navigate(ctx, app.ViewPosts, "")
			},
		})
	}

	return app.Panel{Markup: b.String(), Actions: actions}, nil
}

// splitIDPayload parses "<id>: <text>" action input.
func splitIDPayload(input string) (int64, string, error) {
	idStr, text, ok := strings.Cut(input, ":")
	if !ok {
		return 0, "", fmt.Errorf("expected <id>: <text>, got %q", input)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid ID %q", idStr)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, "", fmt.Errorf("empty text")
	}
	return id, text, nil
}
