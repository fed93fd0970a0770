package handlers

import (
	"net/http"

	"contentgen_backend/internal/dto"
	"contentgen_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	*BaseHandler
	contentService services.ContentService
}

func NewContentHandler(base *BaseHandler, contentService services.ContentService) *ContentHandler {
	return &ContentHandler{
		BaseHandler:    base,
		contentService: contentService,
	}
}

func (h *ContentHandler) RegisterRoutes(r *gin.RouterGroup) {
	content := r.Group("/content")
	content.Use(h.Auth())
	{
		content.POST("/generate", h.Generate)
		content.GET("/history", h.History)
		content.GET("/:id", h.Get)
		content.DELETE("/:id", h.Delete)
	}
}

// Generate godoc
// @Summary Сгенерировать контент
// @Description Проверяет квоту, вызывает модель и сохраняет результат. Расходует одну генерацию.
// @Tags content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GenerateContentRequest true "Параметры генерации"
// @Success 200 {object} dto.GenerateContentResponse
// @Failure 400 {object} apperrors.ErrorResponse "Неверный тип контента или тело запроса"
// @Failure 403 {object} apperrors.ErrorResponse "Нет активной подписки"
// @Failure 429 {object} apperrors.ErrorResponse "Месячный лимит исчерпан"
// @Failure 500 {object} apperrors.ErrorResponse "Ошибка провайдера или хранилища"
// @Router /api/v1/content/generate [post]
func (h *ContentHandler) Generate(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.GenerateContentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.contentService.Generate(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary История генераций
// @Description Последние 50 записей пользователя, новые первыми
// @Tags content
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ContentResponse
// @Router /api/v1/content/history [get]
func (h *ContentHandler) History(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.contentService.ListHistory(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Получить запись
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID записи"
// @Success 200 {object} dto.ContentResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/v1/content/{id} [get]
func (h *ContentHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.contentService.Get(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Удалить запись
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID записи"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/v1/content/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.contentService.Delete(c.Request.Context(), h.GetDB(c), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
