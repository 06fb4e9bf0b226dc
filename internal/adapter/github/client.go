package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"

	portgist "github.com/alanyang/prompt-hub/internal/port/gist"
)

var _ portgist.Client = (*Client)(nil)

// listPageSize matches the GitHub maximum.
const listPageSize = 100

type Client struct {
	gh *github.Client
}

// NewClient returns a gist client authenticated with token. A non-empty
// baseURL points it at GitHub Enterprise or a test server.
func NewClient(token, baseURL string) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	gh := github.NewClient(oauth2.NewClient(context.Background(), ts))
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing github api url: %w", err)
		}
		gh.BaseURL = u
	}
	return &Client{gh: gh}, nil
}

// Factory adapts NewClient to portgist.Factory. A bad baseURL is reported by
// the first call rather than at construction.
func Factory(baseURL string) portgist.Factory {
	return func(token string) portgist.Client {
		c, err := NewClient(token, baseURL)
		if err != nil {
			return brokenClient{err: err}
		}
		return c
	}
}

func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", mapError("validating token", err)
	}
	return user.GetLogin(), nil
}

func (c *Client) List(ctx context.Context) ([]portgist.Gist, error) {
	var out []portgist.Gist
	opts := &github.GistListOptions{ListOptions: github.ListOptions{PerPage: listPageSize}}
	for {
		gists, resp, err := c.gh.Gists.List(ctx, "", opts)
		if err != nil {
			return nil, mapError("listing gists", err)
		}
		for _, g := range gists {
			out = append(out, toGist(g))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	if out == nil {
		out = []portgist.Gist{}
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, description string, public bool, filename, content string) (string, error) {
	g, _, err := c.gh.Gists.Create(ctx, &github.Gist{
		Description: github.String(description),
		Public:      github.Bool(public),
		Files: map[github.GistFilename]github.GistFile{
			github.GistFilename(filename): {Content: github.String(content)},
		},
	})
	if err != nil {
		return "", mapError("creating gist", err)
	}
	return g.GetID(), nil
}

func (c *Client) Update(ctx context.Context, id, filename, content string) error {
	_, _, err := c.gh.Gists.Edit(ctx, id, &github.Gist{
		Files: map[github.GistFilename]github.GistFile{
			github.GistFilename(filename): {Content: github.String(content)},
		},
	})
	if err != nil {
		return mapError("updating gist "+id, err)
	}
	return nil
}

func (c *Client) File(ctx context.Context, id, filename string) (string, bool, error) {
	g, _, err := c.gh.Gists.Get(ctx, id)
	if err != nil {
		return "", false, mapError("fetching gist "+id, err)
	}
	f, ok := g.Files[github.GistFilename(filename)]
	if !ok {
		return "", false, nil
	}
	return f.GetContent(), true, nil
}

func toGist(g *github.Gist) portgist.Gist {
	files := make([]string, 0, len(g.Files))
	for name := range g.Files {
		files = append(files, string(name))
	}
	return portgist.Gist{
		ID:          g.GetID(),
		Description: g.GetDescription(),
		Files:       files,
		Public:      g.GetPublic(),
		HTMLURL:     g.GetHTMLURL(),
		UpdatedAt:   g.GetUpdatedAt().Time,
	}
}

func mapError(op string, err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, portgist.ErrNotFound)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w", op, portgist.ErrUnauthorized)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

type brokenClient struct{ err error }

func (b brokenClient) AuthenticatedUser(context.Context) (string, error) { return "", b.err }
func (b brokenClient) List(context.Context) ([]portgist.Gist, error)    { return nil, b.err }
func (b brokenClient) Create(context.Context, string, bool, string, string) (string, error) {
	return "", b.err
}
func (b brokenClient) Update(context.Context, string, string, string) error { return b.err }
func (b brokenClient) File(context.Context, string, string) (string, bool, error) {
	return "", false, b.err
}
