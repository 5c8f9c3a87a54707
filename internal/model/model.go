// Package model defines the data structures used in the articleKeeper application, including Article, its lifecycle Status, the Draft and Patch payloads accepted by the API, and the AdminUser identity loaded from configuration.
package model

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of an article. Only published articles are
// visible on the public read endpoint.
type Status string

const (
	StatusUnpublished Status = "unpublished"
	StatusPublished   Status = "published"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusUnpublished, StatusPublished:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishAt   *time.Time `json:"publish_at,omitempty"`
	UnpublishAt *time.Time `json:"unpublish_at,omitempty"`
	OwnerID     string     `json:"owner_id"`
}

// Draft is the payload for creating an article. Status defaults to
// unpublished when empty; PublishAt and UnpublishAt are optional.
type Draft struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Status      Status     `json:"status,omitempty"`
	PublishAt   *time.Time `json:"publish_at,omitempty"`
	UnpublishAt *time.Time `json:"unpublish_at,omitempty"`
}

// Patch is a partial update. A nil field leaves the stored value untouched.
type Patch struct {
	Title       *string    `json:"title,omitempty"`
	URL         *string    `json:"url,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	PublishAt   *time.Time `json:"publish_at,omitempty"`
	UnpublishAt *time.Time `json:"unpublish_at,omitempty"`
}

// AdminUser is the single admin identity. It is provisioned through
// configuration, never created at runtime.
type AdminUser struct {
	UserID       string
	PasswordHash string
}
