package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/memerator/internal/logger"
)

const captionImagePath = "/caption_image"

// RenderRequest identifies a template and the two captions to draw on it.
type RenderRequest struct {
	TemplateID string
	Text0      string
	Text1      string
}

// ImageRenderer draws captions onto a template and returns the image URL.
type ImageRenderer interface {
	Render(ctx context.Context, req RenderRequest) (string, error)
}

// ImgflipConfig holds credentials for the imgflip caption API.
type ImgflipConfig struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// ImgflipRenderer renders memes through imgflip's caption_image endpoint.
type ImgflipRenderer struct {
	client   *resty.Client
	username string
	password string
}

type captionImageResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL     string `json:"url"`
		PageURL string `json:"page_url"`
	} `json:"data"`
	ErrorMessage string `json:"error_message"`
}

// NewImgflipRenderer creates a new imgflip renderer.
// Parameters:
//   - cfg: API root, account credentials and timeout.
// Returns:
//   - *ImgflipRenderer: initialized renderer.
func NewImgflipRenderer(cfg *ImgflipConfig) *ImgflipRenderer {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	client.SetHeader("Accept", "application/json")
	client.SetTimeout(cfg.Timeout)

	return &ImgflipRenderer{
		client:   client,
		username: cfg.Username,
		password: cfg.Password,
	}
}

// Render captions a template.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: template id and captions.
// Returns:
//   - string: URL of the rendered image.
//   - error: non-nil if the request fails or imgflip reports an error.
func (r *ImgflipRenderer) Render(ctx context.Context, req RenderRequest) (string, error) {
	start := time.Now()

	var result captionImageResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"template_id": req.TemplateID,
			"username":    r.username,
			"password":    r.password,
			"text0":       req.Text0,
			"text1":       req.Text1,
		}).
		SetResult(&result).
		Post(captionImagePath)
	if err != nil {
		return "", fmt.Errorf("caption_image request failed: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("caption_image returned status %d: %s", resp.StatusCode(), resp.String())
	}

	if !result.Success {
		return "", fmt.Errorf("caption_image failed: %s", result.ErrorMessage)
	}
	if result.Data.URL == "" {
		return "", fmt.Errorf("caption_image returned no url")
	}

	logger.With(logger.Fields{
		logger.FieldProvider:   "imgflip",
		logger.FieldTemplateID: req.TemplateID,
	}).WithDuration(time.Since(start).Milliseconds()).Debug(ctx, "Meme rendered: %s", result.Data.URL)

	return result.Data.URL, nil
}
