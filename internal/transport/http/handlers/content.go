package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/usecase"
)

// ContentHandler serves public banners/FAQs and their admin CRUD endpoints.
type ContentHandler struct {
	content *usecase.ContentService
}

// NewContentHandler builds a content handler.
func NewContentHandler(content *usecase.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// RegisterPublicRoutes wires the read-only endpoints.
func (h *ContentHandler) RegisterPublicRoutes(group *gin.RouterGroup) {
	group.GET("/banners", h.ListBanners)
	group.GET("/faqs", h.ListFAQs)
}

// RegisterAdminRoutes wires the CRUD endpoints; callers must gate them.
func (h *ContentHandler) RegisterAdminRoutes(group *gin.RouterGroup) {
	group.POST("/banners", h.CreateBanner)
	group.PUT("/banners/:id", h.UpdateBanner)
	group.DELETE("/banners/:id", h.DeleteBanner)
	group.POST("/faqs", h.CreateFAQ)
	group.PUT("/faqs/:id", h.UpdateFAQ)
	group.DELETE("/faqs/:id", h.DeleteFAQ)
}

// ListBanners returns active banners in display order.
func (h *ContentHandler) ListBanners(c *gin.Context) {
	banners, err := h.content.ListBanners(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list banners"))
		return
	}

	out := make([]BannerResponse, 0, len(banners))
	for _, b := range banners {
		out = append(out, newBannerResponse(b))
	}
	c.JSON(http.StatusOK, out)
}

// CreateBanner stores a new banner.
func (h *ContentHandler) CreateBanner(c *gin.Context) {
	var req BannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid banner payload"))
		return
	}

	created, err := h.content.CreateBanner(c.Request.Context(), domain.Banner{
		Title:        req.Title,
		ImageURL:     req.ImageURL,
		LinkURL:      req.LinkURL,
		DisplayOrder: req.DisplayOrder,
		Active:       req.Active,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to create banner"))
		return
	}

	c.JSON(http.StatusCreated, newBannerResponse(*created))
}

// UpdateBanner modifies an existing banner.
func (h *ContentHandler) UpdateBanner(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req BannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid banner payload"))
		return
	}

	err := h.content.UpdateBanner(c.Request.Context(), domain.Banner{
		ID:           id,
		Title:        req.Title,
		ImageURL:     req.ImageURL,
		LinkURL:      req.LinkURL,
		DisplayOrder: req.DisplayOrder,
		Active:       req.Active,
	})
	if err != nil {
		writeDomainError(c, err, []errorCase{
			{Err: usecase.ErrContentNotFound, Status: http.StatusNotFound, Message: "banner not found"},
		}, http.StatusInternalServerError, "failed to update banner")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "banner updated"})
}

// DeleteBanner removes a banner.
func (h *ContentHandler) DeleteBanner(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.content.DeleteBanner(c.Request.Context(), id); err != nil {
		writeDomainError(c, err, []errorCase{
			{Err: usecase.ErrContentNotFound, Status: http.StatusNotFound, Message: "banner not found"},
		}, http.StatusInternalServerError, "failed to delete banner")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "banner deleted"})
}

// ListFAQs returns active FAQ entries in display order.
func (h *ContentHandler) ListFAQs(c *gin.Context) {
	faqs, err := h.content.ListFAQs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list faqs"))
		return
	}

	out := make([]FAQResponse, 0, len(faqs))
	for _, f := range faqs {
		out = append(out, newFAQResponse(f))
	}
	c.JSON(http.StatusOK, out)
}

// CreateFAQ stores a new FAQ entry.
func (h *ContentHandler) CreateFAQ(c *gin.Context) {
	var req FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid faq payload"))
		return
	}

	created, err := h.content.CreateFAQ(c.Request.Context(), domain.FAQ{
		Question:     req.Question,
		Answer:       req.Answer,
		Category:     req.Category,
		DisplayOrder: req.DisplayOrder,
		Active:       req.Active,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to create faq"))
		return
	}

	c.JSON(http.StatusCreated, newFAQResponse(*created))
}

// UpdateFAQ modifies an existing FAQ entry.
func (h *ContentHandler) UpdateFAQ(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid faq payload"))
		return
	}

	err := h.content.UpdateFAQ(c.Request.Context(), domain.FAQ{
		ID:           id,
		Question:     req.Question,
		Answer:       req.Answer,
		Category:     req.Category,
		DisplayOrder: req.DisplayOrder,
		Active:       req.Active,
	})
	if err != nil {
		writeDomainError(c, err, []errorCase{
			{Err: usecase.ErrContentNotFound, Status: http.StatusNotFound, Message: "faq not found"},
		}, http.StatusInternalServerError, "failed to update faq")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "faq updated"})
}

// DeleteFAQ removes an FAQ entry.
func (h *ContentHandler) DeleteFAQ(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.content.DeleteFAQ(c.Request.Context(), id); err != nil {
		writeDomainError(c, err, []errorCase{
			{Err: usecase.ErrContentNotFound, Status: http.StatusNotFound, Message: "faq not found"},
		}, http.StatusInternalServerError, "failed to delete faq")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "faq deleted"})
}

func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid id"))
		return 0, false
	}
	return id, true
}
