package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightpath/assessment-engine/internal/http/response"
	"github.com/brightpath/assessment-engine/internal/platform/logger"
	"github.com/brightpath/assessment-engine/internal/requestdata"
	"github.com/brightpath/assessment-engine/internal/services"
)

type CalibrationHandler struct {
	log         *logger.Logger
	calibration services.CalibrationService
}

func NewCalibrationHandler(log *logger.Logger, calibration services.CalibrationService) *CalibrationHandler {
	return &CalibrationHandler{log: log.With("handler", "CalibrationHandler"), calibration: calibration}
}

// POST /api/items/:id/calibrations
func (h *CalibrationHandler) CalibrateItem(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil || itemID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}

	proposal, err := h.calibration.CalibrateItem(c.Request.Context(), rd.TenantID, itemID)
	if err != nil {
		h.log.Error("CalibrateItem failed", "error", err, "item_id", itemID)
		respondDomainError(c, "calibrate_item_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"proposal": proposal})
}

// POST /api/pools/:id/calibrations
func (h *CalibrationHandler) CalibratePool(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	poolID, err := uuid.Parse(c.Param("id"))
	if err != nil || poolID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_pool_id", err)
		return
	}

	proposals, err := h.calibration.CalibratePool(c.Request.Context(), rd.TenantID, poolID)
	if err != nil {
		h.log.Error("CalibratePool failed", "error", err, "pool_id", poolID)
		respondDomainError(c, "calibrate_pool_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"proposals": proposals})
}

// GET /api/items/:id/calibrations
func (h *CalibrationHandler) ListPending(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil || itemID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}

	proposals, err := h.calibration.ListPending(c.Request.Context(), rd.TenantID, itemID)
	if err != nil {
		h.log.Error("ListPending failed", "error", err, "item_id", itemID)
		respondDomainError(c, "list_calibrations_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"proposals": proposals})
}

// POST /api/calibrations/:id/approve
func (h *CalibrationHandler) ApproveProposal(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil || proposalID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_proposal_id", err)
		return
	}

	proposal, err := h.calibration.ApproveProposal(c.Request.Context(), rd.TenantID, proposalID)
	if err != nil {
		h.log.Error("ApproveProposal failed", "error", err, "proposal_id", proposalID)
		respondDomainError(c, "approve_proposal_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"proposal": proposal})
}
