package imagekit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/domain/thumb"
)

const defaultTimeout = 30 * time.Second

// Renderer turns a finished prompt into a hosted image URL.
type Renderer interface {
	Render(ctx context.Context, promptText string, ratio thumb.AspectRatio) (string, error)
}

// Uploader persists rendered image bytes and returns a stable public URL.
type Uploader interface {
	Upload(ctx context.Context, fileName string, data []byte) (string, error)
}

type Options struct {
	URLEndpoint string
	HTTPClient  *http.Client
	Uploader    Uploader
}

// Client renders images through ImageKit's generate-by-URL endpoint and
// re-hosts the result through the configured uploader.
type Client struct {
	urlEndpoint string
	client      *http.Client
	uploader    Uploader
}

func NewClient(opts Options) (*Client, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(opts.URLEndpoint), "/")
	if endpoint == "" {
		return nil, errors.New("imagekit url endpoint is required")
	}
	if opts.Uploader == nil {
		return nil, errors.New("imagekit uploader is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{urlEndpoint: endpoint, client: client, uploader: opts.Uploader}, nil
}

// Render fetches a generated image for the prompt and uploads it under a
// per-call unique filename so concurrent requests never collide.
func (c *Client) Render(ctx context.Context, promptText string, ratio thumb.AspectRatio) (string, error) {
	data, err := c.fetch(ctx, promptText, ratio)
	if err != nil {
		return "", err
	}
	fileName := fmt.Sprintf("thumbnail-%s.png", uuid.NewString())
	hosted, err := c.uploader.Upload(ctx, fileName, data)
	if err != nil {
		return "", err
	}
	return hosted, nil
}

func (c *Client) fetch(ctx context.Context, promptText string, ratio thumb.AspectRatio) ([]byte, error) {
	width, height := ratio.Size()
	genURL := fmt.Sprintf(
		"%s/ik-genimg-prompt-%s/thumbnails/%s.png?tr=w-%d,h-%d",
		c.urlEndpoint,
		url.PathEscape(promptText),
		uuid.NewString(),
		width,
		height,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, genURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build render request: %v", domain.ErrUpstreamFailure, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: render fetch: %v", domain.ErrUpstreamFailure, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: render status %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read rendered image: %v", domain.ErrUpstreamFailure, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty rendered image", domain.ErrUpstreamFailure)
	}
	return data, nil
}

var _ Renderer = (*Client)(nil)
