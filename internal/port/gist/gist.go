package gist

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("gist not found")
	ErrUnauthorized = errors.New("github token rejected")
)

type Gist struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Files       []string  `json:"files"`
	Public      bool      `json:"public"`
	HTMLURL     string    `json:"html_url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Client is the subset of the GitHub API used for gist sync.
type Client interface {
	// AuthenticatedUser returns the login of the token's owner.
	AuthenticatedUser(ctx context.Context) (string, error)
	List(ctx context.Context) ([]Gist, error)
	// Create makes a new gist holding one file and returns its id.
	Create(ctx context.Context, description string, public bool, filename, content string) (string, error)
	// Update overwrites one file of an existing gist.
	Update(ctx context.Context, id, filename, content string) error
	// File returns the content of one file; found is false when the gist has no such file.
	File(ctx context.Context, id, filename string) (content string, found bool, err error)
}

// Factory builds a Client authenticated with token.
type Factory func(token string) Client
