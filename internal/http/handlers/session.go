package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightpath/assessment-engine/internal/domain"
	"github.com/brightpath/assessment-engine/internal/http/response"
	"github.com/brightpath/assessment-engine/internal/platform/logger"
	"github.com/brightpath/assessment-engine/internal/requestdata"
	"github.com/brightpath/assessment-engine/internal/services"
)

type SessionHandler struct {
	log        *logger.Logger
	assessment services.AssessmentService
}

func NewSessionHandler(log *logger.Logger, assessment services.AssessmentService) *SessionHandler {
	return &SessionHandler{log: log.With("handler", "SessionHandler"), assessment: assessment}
}

type createSessionRequest struct {
	PoolID uuid.UUID            `json:"pool_id"`
	Config domain.SessionConfig `json:"config"`
}

// POST /api/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.BeneficiaryID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if req.PoolID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_pool_id", nil)
		return
	}

	session, err := h.assessment.CreateSession(c.Request.Context(), rd.TenantID, rd.BeneficiaryID, req.PoolID, req.Config)
	if err != nil {
		h.log.Error("CreateSession failed", "error", err, "pool_id", req.PoolID)
		respondDomainError(c, "create_session_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"session": session})
}

// POST /api/sessions/:id/start
func (h *SessionHandler) StartSession(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.BeneficiaryID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil || sessionID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}

	session, item, err := h.assessment.Start(c.Request.Context(), rd.TenantID, sessionID)
	if err != nil {
		h.log.Error("StartSession failed", "error", err, "session_id", sessionID)
		respondDomainError(c, "start_session_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"session":         session,
		"item":            item,
		"question_number": 1,
	})
}

// POST /api/sessions/:id/responses
func (h *SessionHandler) SubmitResponse(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.BeneficiaryID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil || sessionID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}

	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if len(req.Answer) == 0 {
		response.RespondError(c, http.StatusBadRequest, "missing_answer", nil)
		return
	}

	result, err := h.assessment.SubmitResponse(c.Request.Context(), rd.TenantID, sessionID, req)
	if err != nil {
		h.log.Error("SubmitResponse failed", "error", err, "session_id", sessionID)
		respondDomainError(c, "submit_response_failed", err)
		return
	}
	response.RespondOK(c, result)
}

// POST /api/sessions/:id/abandon
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.BeneficiaryID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil || sessionID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}

	session, err := h.assessment.Abandon(c.Request.Context(), rd.TenantID, sessionID)
	if err != nil {
		h.log.Error("AbandonSession failed", "error", err, "session_id", sessionID)
		respondDomainError(c, "abandon_session_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

// GET /api/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.BeneficiaryID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil || sessionID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}

	session, err := h.assessment.GetSession(c.Request.Context(), rd.TenantID, sessionID)
	if err != nil {
		h.log.Error("GetSession failed", "error", err, "session_id", sessionID)
		respondDomainError(c, "load_session_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"session": session})
}

// GET /api/sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.BeneficiaryID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	sessions, err := h.assessment.ListSessions(c.Request.Context(), rd.TenantID, rd.BeneficiaryID)
	if err != nil {
		h.log.Error("ListSessions failed", "error", err, "beneficiary_id", rd.BeneficiaryID)
		respondDomainError(c, "list_sessions_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": sessions})
}

// GET /api/sessions/:id/report
func (h *SessionHandler) GetReport(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.BeneficiaryID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil || sessionID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}

	rep, err := h.assessment.GetReport(c.Request.Context(), rd.TenantID, sessionID)
	if err != nil {
		h.log.Error("GetReport failed", "error", err, "session_id", sessionID)
		respondDomainError(c, "load_report_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"report": rep})
}
