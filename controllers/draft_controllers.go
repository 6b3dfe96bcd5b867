package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/resto-order-core/drafts"
	"github.com/yeremiapane/resto-order-core/middlewares"
	"github.com/yeremiapane/resto-order-core/models"
	"github.com/yeremiapane/resto-order-core/utils"
)

const terminalHeader = "X-Terminal-ID"

type DraftController struct {
	Store *drafts.Store
}

func NewDraftController(store *drafts.Store) *DraftController {
	return &DraftController{Store: store}
}

func terminalID(c *gin.Context) (string, bool) {
	terminal := strings.TrimSpace(c.GetHeader(terminalHeader))
	if terminal == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New(terminalHeader+" header is required"))
		return "", false
	}
	return terminal, true
}

func (dc *DraftController) GetDrafts(c *gin.Context) {
	terminal, ok := terminalID(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Drafts", dc.Store.List(middlewares.TenantID(c), terminal))
}

// SaveDraft creates a draft, or overwrites the one named by "id".
func (dc *DraftController) SaveDraft(c *gin.Context) {
	terminal, ok := terminalID(c)
	if !ok {
		return
	}
	var req struct {
		ID    string            `json:"id"`
		Name  string            `json:"name"`
		Lines []models.CartLine `json:"lines"`
	}
	if !bindJSON(c, &req) {
		return
	}

	draft, err := dc.Store.Save(middlewares.TenantID(c), terminal, req.ID, req.Name, req.Lines)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Draft saved", draft)
}

func (dc *DraftController) GetDraft(c *gin.Context) {
	terminal, ok := terminalID(c)
	if !ok {
		return
	}

	draft, err := dc.Store.Get(middlewares.TenantID(c), terminal, c.Param("draft_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Draft", draft)
}

func (dc *DraftController) DeleteDraft(c *gin.Context) {
	terminal, ok := terminalID(c)
	if !ok {
		return
	}

	if err := dc.Store.Delete(middlewares.TenantID(c), terminal, c.Param("draft_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Draft deleted", nil)
}
