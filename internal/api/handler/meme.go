package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memerator/internal/api/middleware"
	"github.com/timmy/memerator/internal/domain"
	"github.com/timmy/memerator/internal/service"
)

// MemeHandler handles meme endpoints.
type MemeHandler struct {
	memeService *service.MemeService
}

// NewMemeHandler creates a new meme handler
func NewMemeHandler(memeService *service.MemeService) *MemeHandler {
	return &MemeHandler{memeService: memeService}
}

// CreateMemeRequest is the body of POST /api/v1/memes.
type CreateMemeRequest struct {
	Topics   []string `json:"topics"`
	Audience string   `json:"audience"`
}

// EditMemeRequest is the body of PUT /api/v1/memes/:id.
type EditMemeRequest struct {
	Text0 string `json:"text0"`
	Text1 string `json:"text1"`
}

// ListMemesResponse wraps the meme list.
type ListMemesResponse struct {
	Memes []domain.Meme `json:"memes"`
	Total int           `json:"total"`
}

// ListMemes returns every meme, newest first. No login needed.
// GET /api/v1/memes
func (h *MemeHandler) ListMemes(c *gin.Context) {
	memes, err := h.memeService.GetAllMemes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListMemesResponse{Memes: memes, Total: len(memes)})
}

// CreateMeme generates a meme for the caller.
// POST /api/v1/memes
func (h *MemeHandler) CreateMeme(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	if err := service.RequireUser(caller); err != nil {
		respondError(c, err)
		return
	}

	var req CreateMemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	meme, err := h.memeService.CreateMeme(c.Request.Context(), caller, req.Topics, req.Audience)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, meme)
}

// GetMeme returns a single meme.
// GET /api/v1/memes/:id
func (h *MemeHandler) GetMeme(c *gin.Context) {
	meme, err := h.memeService.GetMeme(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, meme)
}

// EditMeme replaces a meme's captions.
// PUT /api/v1/memes/:id
func (h *MemeHandler) EditMeme(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	if err := service.RequireUser(caller); err != nil {
		respondError(c, err)
		return
	}

	var req EditMemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	meme, err := h.memeService.EditMeme(c.Request.Context(), caller, c.Param("id"), req.Text0, req.Text1)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, meme)
}

// GetMemeImage streams the archived image, or redirects to the rendered URL when there is no archived copy.
// GET /api/v1/memes/:id/image
func (h *MemeHandler) GetMemeImage(c *gin.Context) {
	obj, meme, err := h.memeService.OpenArchivedImage(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if obj == nil {
		c.Redirect(http.StatusFound, meme.URL)
		return
	}
	defer obj.Body.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, obj.ContentType, obj.Body, nil)
}
