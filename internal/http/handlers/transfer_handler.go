// Transfer HTTP handlers.
//
// This file exposes bulk import/export of the live list:
//   - GET  /export  (download the list as a JSON snapshot)
//   - POST /import  (replace the list from a snapshot, confirmation-gated)
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkarlin/gimmie/internal/repo"
	"github.com/mkarlin/gimmie/internal/services"
)

// ExportItems handles GET /export. The snapshot is served as a JSON
// attachment named after the current date so saved files sort naturally.
func (h *Handlers) ExportItems(c *gin.Context) {
	snap, err := repo.WithRetry(c.Request.Context(), func() (*services.Snapshot, error) {
		return h.transfer.Export(c.Request.Context())
	})
	if err != nil {
		failFromErr(c, err)
		return
	}

	filename := fmt.Sprintf("gimmie_export_%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ok(c, http.StatusOK, snap)
}

// ImportRequest is the JSON payload for a bulk import. Items are loose
// objects so the validators can normalize them; ConfirmReplace must be true
// to replace a non-empty list.
type ImportRequest struct {
	Items          []map[string]any `json:"items"`
	ConfirmReplace bool             `json:"confirm_replace"`
}

// ImportItems handles POST /import. When the live list is non-empty and
// confirm_replace is false, the response is 409 confirmation_required with
// the number of items that would be archived; nothing is changed.
func (h *Handlers) ImportItems(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body must be a JSON object with an items array")
		return
	}
	if req.Items == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "items array is required")
		return
	}

	n, err := repo.WithRetry(c.Request.Context(), func() (int, error) {
		return h.transfer.Import(c.Request.Context(), req.Items, req.ConfirmReplace)
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"imported": n})
}
