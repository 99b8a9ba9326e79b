package handler

import (
	approvalapp "github.com/docflow/backend/internal/application/approval"
	"github.com/gin-gonic/gin"
)

// ApprovalLevelHandler handles approval pipeline configuration endpoints
type ApprovalLevelHandler struct {
	BaseHandler
	levelService *approvalapp.LevelService
}

// NewApprovalLevelHandler creates a new ApprovalLevelHandler
func NewApprovalLevelHandler(levelService *approvalapp.LevelService) *ApprovalLevelHandler {
	return &ApprovalLevelHandler{
		levelService: levelService,
	}
}

// GetLevels godoc
// @ID           getApprovalLevels
// @Summary      Get approval pipeline
// @Description  Retrieve the ordered approval levels configured for a document type
// @Tags         approval-levels
// @Produce      json
// @Param        type_key path string true "Document type key" example:"sales.invoice"
// @Success      200 {object} APIResponse[[]approvalapp.LevelResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /approval-levels/{type_key} [get]
func (h *ApprovalLevelHandler) GetLevels(c *gin.Context) {
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

	levels, err := h.levelService.GetLevels(c.Request.Context(), tenantID, typeKey)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, levels)
}

// SaveLevels godoc
// @ID           saveApprovalLevels
// @Summary      Replace approval pipeline
// @Description  Replace the approval levels for a document type. Documents already in flight keep their current pipeline; an empty list makes future submissions auto-approve.
// @Tags         approval-levels
// @Accept       json
// @Produce      json
// @Param        request body approvalapp.SaveLevelsRequest true "Approval pipeline"
// @Success      200 {object} APIResponse[[]approvalapp.LevelResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /approval-levels [put]
func (h *ApprovalLevelHandler) SaveLevels(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req approvalapp.SaveLevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	levels, err := h.levelService.SaveLevels(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, levels)
}
