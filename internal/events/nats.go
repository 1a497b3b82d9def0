// Package events publishes post lifecycle notifications to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/logger"
)

const (
	KindCreated = "created"
	KindUpdated = "updated"
)

// PostEvent is the payload published for every created or edited post.
type PostEvent struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	GroupID   *string   `json:"group_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewPostEvent(kind string, post *models.Post) PostEvent {
	event := PostEvent{
		Kind:      kind,
		ID:        post.ID.String(),
		AuthorID:  post.AuthorID.String(),
		Text:      post.Text,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
	if post.GroupID != nil {
		groupID := post.GroupID.String()
		event.GroupID = &groupID
	}
	return event
}

// Subject joins the configured prefix and the event kind, e.g. "posts.created".
func Subject(prefix, kind string) string {
	if prefix == "" {
		return kind
	}
	return prefix + "." + kind
}

type NatsPublisher struct {
	nc     *nats.Conn
	prefix string
}

func NewNatsPublisher(nc *nats.Conn, prefix string) *NatsPublisher {
	return &NatsPublisher{nc: nc, prefix: prefix}
}

func (p *NatsPublisher) PublishPostCreated(ctx context.Context, post *models.Post) error {
	return p.publish(ctx, KindCreated, post)
}

func (p *NatsPublisher) PublishPostUpdated(ctx context.Context, post *models.Post) error {
	return p.publish(ctx, KindUpdated, post)
}

func (p *NatsPublisher) publish(ctx context.Context, kind string, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(NewPostEvent(kind, post))
	if err != nil {
		return fmt.Errorf("marshalling post event: %w", err)
	}

	msg := &nats.Msg{
		Subject: Subject(p.prefix, kind),
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set("Yatube-Event", kind)

	logger.Info("post_event_published", map[string]interface{}{
		"subject": msg.Subject,
		"post_id": post.ID.String(),
	})

	return p.nc.PublishMsg(msg)
}
