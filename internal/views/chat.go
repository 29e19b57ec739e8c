package views

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/agri-advisor/internal/app"
	"github.com/ashureev/agri-advisor/internal/domain"
	"github.com/ashureev/agri-advisor/internal/realtime"
)

// Chat renders the messaging view: roster sidebar, transcript of the
// active conversation, and a compose action that stays usable only while
// the channel is open.
type Chat struct {
	mu         sync.Mutex
	recipient  int64
	loadedFor  int64
	transcript *realtime.Transcript
}

// NewChat creates the chat renderer.
func NewChat() *Chat {
	return &Chat{transcript: realtime.NewTranscript(200)}
}

// ActiveRecipient reports the open conversation partner; the channel
// manager consults it to route inbound messages.
func (c *Chat) ActiveRecipient() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recipient
}

func (c *Chat) Render(ctx context.Context, env *app.Env) (app.Panel, error) {
	// Conversation selection comes from the navigation parameter.
	if env.Param != "" {
		id, err := strconv.ParseInt(env.Param, 10, 64)
		if err != nil {
			return app.Panel{}, fmt.Errorf("invalid conversation target %q", env.Param)
		}
		c.mu.Lock()
		c.recipient = id
		c.mu.Unlock()
	}

	c.bindChannel(env)

	// Best effort: a failed connect leaves the view usable, compose
	// disabled. The user re-enters the view to retry; no auto-reconnect.
	if err := env.Nav.OpenChannel(ctx); err != nil {
		slog.Warn("Failed to open realtime channel", "error", err)
	}

	c.mu.Lock()
	recipient := c.recipient
	needHistory := recipient != 0 && c.loadedFor != recipient
	c.mu.Unlock()

	if needHistory {
		history, err := env.Gateway.ChatHistory(ctx, recipient)
		if err != nil {
			return app.Panel{}, err
		}
		c.mu.Lock()
		c.transcript.Reset()
		for _, msg := range history {
			c.transcript.Append(msg)
		}
		c.loadedFor = recipient
		c.mu.Unlock()

		if err := env.Sessions.ClearUnread(ctx, recipient); err != nil {
			slog.Warn("Failed to clear unread marker", "error", err, "user_id", recipient)
		}
		if err := env.Sessions.UpsertContact(ctx, domain.Contact{
			UserID: recipient,
			Label:  fmt.Sprintf("User %d", recipient),
		}); err != nil {
			slog.Warn("Failed to record contact", "error", err, "user_id", recipient)
		}
	}

	contacts, err := env.Sessions.Contacts(ctx)
	if err != nil {
		return app.Panel{}, err
	}

	markup := c.renderMarkup(env, contacts, recipient)
	actions := c.buildActions(env, recipient)
	return app.Panel{Markup: markup, Actions: actions}, nil
}

// bindChannel installs the inbound dispatch handlers. An inbound message
// for the open conversation refreshes the view; anything else marks the
// sender's roster entry without touching the transcript.
func (c *Chat) bindChannel(env *app.Env) {
	nav := env.Nav
	store := env.Sessions
	env.Channel.SetHandlers(realtime.Handlers{
		ActiveRecipient: c.ActiveRecipient,
		OnMessage: func(msg domain.ChatMessage) {
			c.mu.Lock()
			c.transcript.Append(msg)
			recipient := c.recipient
			c.mu.Unlock()
			refreshChat(nav, recipient)
		},
		OnUnread: func(senderID int64) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.MarkUnread(ctx, senderID); err != nil {
				slog.Warn("Failed to mark unread", "error", err, "user_id", senderID)
			}
			nav.Notify()
		},
	})
}

// refreshChat re-renders the chat view from the readLoop goroutine.
func refreshChat(nav app.Navigator, recipient int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	param := ""
	if recipient != 0 {
		param = strconv.FormatInt(recipient, 10)
	}
	if err := nav.Navigate(ctx, app.ViewChat, param); err != nil {
		slog.Warn("Failed to refresh chat view", "error", err)
	}
}

func (c *Chat) renderMarkup(env *app.Env, contacts []domain.Contact, recipient int64) string {
	var roster strings.Builder
	roster.WriteString(subheading.Render("Conversations") + "\n")
	if len(contacts) == 0 {
		roster.WriteString(muted.Render("No conversations yet.") + "\n")
	}
	for _, contact := range contacts {
		line := contact.Label
		if contact.Unread {
			line += " " + unreadBadge.Render("● new")
		}
		if contact.UserID == recipient {
			line = selected.Render(line)
		}
		roster.WriteString(line + "\n")
	}

	var pane strings.Builder
	pane.WriteString(heading.Render("Chat") + "\n")
	if recipient == 0 {
		pane.WriteString(muted.Render("Open a conversation to start messaging.") + "\n")
	} else {
		pane.WriteString(subheading.Render(fmt.Sprintf("Conversation with User %d", recipient)) + "\n")
		c.mu.Lock()
		messages := c.transcript.Messages()
		c.mu.Unlock()
		if len(messages) == 0 {
			pane.WriteString(muted.Render("No messages yet. Say hello.") + "\n")
		}
		for _, msg := range messages {
			who := fmt.Sprintf("User %d", msg.SenderID)
			if env.User != nil && msg.SenderID == env.User.ID {
				who = "You"
			}
			pane.WriteString(fmt.Sprintf("%s: %s\n", subheading.Render(who), msg.Content))
		}
	}
	if env.Channel.IsOpen() {
		pane.WriteString(muted.Render("Channel connected.") + "\n")
	} else {
		pane.WriteString(errText.Render("Channel disconnected; re-enter this view to reconnect.") + "\n")
	}

	return card.Render(roster.String()) + "\n" + card.Render(pane.String())
}

func (c *Chat) buildActions(env *app.Env, recipient int64) []app.Action {
	actions := []app.Action{
		{
			Key:    "o",
			Label:  "open conversation",
			Prompt: "User ID",
			Do: func(ctx context.Context, input string) error {
				id := strings.TrimSpace(input)
				if _, err := strconv.ParseInt(id, 10, 64); err != nil {
					return fmt.Errorf("invalid user ID %q", input)
				}
				return env.Nav.Navigate(ctx, app.ViewChat, id)
			},
		},
	}

	// Compose only while the channel is open and a conversation is
	// selected.
	if recipient != 0 && env.Channel.IsOpen() {
		actions = append(actions, app.Action{
			Key:    "s",
			Label:  "send message",
			Prompt: "Message",
			Do: func(ctx context.Context, input string) error {
				content := strings.TrimSpace(input)
				if content == "" {
					return nil
				}
				if err := env.Channel.Send(ctx, recipient, content); err != nil {
					return err
				}
				c.mu.Lock()
				c.transcript.Append(domain.ChatMessage{
					SenderID:    env.User.ID,
					RecipientID: recipient,
					Content:     content,
				})
				c.mu.Unlock()
				if err := env.Sessions.UpsertContact(ctx, domain.Contact{
					UserID: recipient,
					Label:  fmt.Sprintf("User %d", recipient),
				}); err != nil {
					slog.Warn("Failed to record contact", "error", err, "user_id", recipient)
				}
				return env.Nav.Navigate(ctx, app.ViewChat, strconv.FormatInt(recipient, 10))
			},
		})
	}

	return actions
}
