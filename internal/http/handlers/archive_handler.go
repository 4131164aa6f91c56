// Archive HTTP handlers.
//
// This file exposes the REST endpoints for removed items:
//   - GET  /archive               (list, newest first, paginated)
//   - POST /archive/{id}/restore  (bring an entry back to the live list)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkarlin/gimmie/internal/domain"
	"github.com/mkarlin/gimmie/internal/repo"
	"github.com/mkarlin/gimmie/internal/utils"
)

// archiveDefaultPageSize is used when page_size is absent or unparseable.
const archiveDefaultPageSize = 20

// Pagination carries paging metadata for list responses.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// ListArchive handles GET /archive with optional page and page_size query
// parameters.
func (h *Handlers) ListArchive(c *gin.Context) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	pageSize := utils.AtoiDefault(c.Query("page_size"), archiveDefaultPageSize)

	type pageResult struct {
		entries []domain.ArchiveEntry
		total   int64
	}
	res, err := repo.WithRetry(c.Request.Context(), func() (pageResult, error) {
		entries, total, err := h.archive.ListPage(c.Request.Context(), page, pageSize)
		return pageResult{entries: entries, total: total}, err
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	if res.entries == nil {
		res.entries = []domain.ArchiveEntry{}
	}

	ok(c, http.StatusOK, gin.H{
		"entries": res.entries,
		"pagination": Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    res.total,
		},
	})
}

// RestoreItem handles POST /archive/:id/restore. On success the restored
// item (fresh id, tail position) is returned with 201.
func (h *Handlers) RestoreItem(c *gin.Context) {
	id, okID := itemID(c)
	if !okID {
		return
	}

	item, err := repo.WithRetry(c.Request.Context(), func() (*domain.Item, error) {
		return h.archive.Restore(c.Request.Context(), id)
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusCreated, item)
}
