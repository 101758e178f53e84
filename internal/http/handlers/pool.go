package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/brightpath/assessment-engine/internal/domain"
	"github.com/brightpath/assessment-engine/internal/http/response"
	"github.com/brightpath/assessment-engine/internal/platform/logger"
	"github.com/brightpath/assessment-engine/internal/requestdata"
	"github.com/brightpath/assessment-engine/internal/services"
)

type PoolHandler struct {
	log  *logger.Logger
	pool services.PoolService
}

func NewPoolHandler(log *logger.Logger, pool services.PoolService) *PoolHandler {
	return &PoolHandler{log: log.With("handler", "PoolHandler"), pool: pool}
}

type createItemRequest struct {
	ItemType       domain.ItemType `json:"item_type"`
	PromptMD       string          `json:"prompt_md"`
	Options        json.RawMessage `json:"options,omitempty"`
	CorrectAnswer  json.RawMessage `json:"correct_answer"`
	Topic          string          `json:"topic"`
	Subtopic       string          `json:"subtopic,omitempty"`
	CognitiveLevel string          `json:"cognitive_level,omitempty"`
	Difficulty     float64         `json:"difficulty"`
	Discrimination float64         `json:"discrimination"`
	Guessing       float64         `json:"guessing"`
	IsActive       *bool           `json:"is_active,omitempty"`
	Approved       bool            `json:"approved"`
}

type createPoolRequest struct {
	Name       string              `json:"name"`
	Subject    string              `json:"subject,omitempty"`
	GradeLevel string              `json:"grade_level,omitempty"`
	Items      []createItemRequest `json:"items"`
}

// POST /api/pools
func (h *PoolHandler) CreatePool(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req createPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	pool := &domain.ItemPool{Name: req.Name, Subject: req.Subject, GradeLevel: req.GradeLevel}
	items := make([]*domain.PoolItem, 0, len(req.Items))
	for _, ir := range req.Items {
		item := &domain.PoolItem{
			ItemType:       ir.ItemType,
			PromptMD:       ir.PromptMD,
			Options:        datatypes.JSON(ir.Options),
			CorrectAnswer:  datatypes.JSON(ir.CorrectAnswer),
			Topic:          ir.Topic,
			Subtopic:       ir.Subtopic,
			CognitiveLevel: ir.CognitiveLevel,
			Difficulty:     ir.Difficulty,
			Discrimination: ir.Discrimination,
			Guessing:       ir.Guessing,
			IsActive:       true,
			ReviewStatus:   domain.ReviewStatusDraft,
		}
		if ir.IsActive != nil {
			item.IsActive = *ir.IsActive
		}
		if ir.Approved {
			item.ReviewStatus = domain.ReviewStatusApproved
		}
		items = append(items, item)
	}

	created, err := h.pool.CreatePool(c.Request.Context(), rd.TenantID, pool, items)
	if err != nil {
		h.log.Error("CreatePool failed", "error", err, "tenant_id", rd.TenantID)
		respondDomainError(c, "create_pool_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"pool": created, "item_count": len(items)})
}

// GET /api/pools
func (h *PoolHandler) ListPools(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TenantID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	pools, err := h.pool.ListPools(c.Request.Context(), rd.TenantID)
	if err != nil {
		h.log.Error("ListPools failed", "error", err, "tenant_id", rd.TenantID)
		respondDomainError(c, "list_pools_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"pools": pools})
}

// GET /api/pools/:id
func (h *PoolHandler) GetPool(c *gin.Context) {
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
	pool, items, err := h.pool.GetPool(c.Request.Context(), rd.TenantID, poolID)
	if err != nil {
		h.log.Error("GetPool failed", "error", err, "pool_id", poolID)
		respondDomainError(c, "load_pool_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"pool": pool, "items": items})
}
