package handler

import (
	docapp "github.com/docflow/backend/internal/application/document"
	"github.com/gin-gonic/gin"
)

// NumberSettingHandler handles document numbering configuration endpoints
type NumberSettingHandler struct {
	BaseHandler
	workflowService *docapp.WorkflowService
}

// NewNumberSettingHandler creates a new NumberSettingHandler
func NewNumberSettingHandler(workflowService *docapp.WorkflowService) *NumberSettingHandler {
	return &NumberSettingHandler{
		workflowService: workflowService,
	}
}

// Get godoc
// @ID           getNumberSetting
// @Summary      Get numbering configuration
// @Description  Retrieve the numbering sequence configuration for a document type
// @Tags         number-settings
// @Produce      json
// @Param        type_key path string true "Document type key" example:"sales.invoice"
// @Success      200 {object} APIResponse[docapp.NumberSettingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /number-settings/{type_key} [get]
func (h *NumberSettingHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	typeKey := c.Param("type_key")
	if typeKey == "" {
		h.BadRequest(c, "Document type key is required")
		return
	}

	setting, err := h.workflowService.GetNumberSetting(c.Request.Context(), tenantID, typeKey)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, setting)
}

// Upsert godoc
// @ID           upsertNumberSetting
// @Summary      Create or update numbering configuration
// @Description  Create or replace the numbering sequence configuration for a document type. The counter is never reset by an update; period rollover handles resets.
// @Tags         number-settings
// @Accept       json
// @Produce      json
// @Param        request body docapp.UpsertNumberSettingRequest true "Numbering configuration"
// @Success      200 {object} APIResponse[docapp.NumberSettingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /number-settings [put]
func (h *NumberSettingHandler) Upsert(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req docapp.UpsertNumberSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	setting, err := h.workflowService.UpsertNumberSetting(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, setting)
}
