// Item HTTP handlers.
//
// This file exposes the REST endpoints for the live wishlist:
//   - GET    /items               (list, ordered by position)
//   - POST   /items               (add at the tail)
//   - PUT    /items/{id}          (edit fields)
//   - DELETE /items/{id}          (remove, archived as deleted)
//   - POST   /items/{id}/complete (remove, archived as completed)
//   - POST   /items/{id}/move     (swap with the up/down neighbour)
//
// Handlers are transport-thin: they decode input, run it through the
// validators, call the list service with a storage retry wrapper, and
// translate errors into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkarlin/gimmie/internal/domain"
	"github.com/mkarlin/gimmie/internal/repo"
	"github.com/mkarlin/gimmie/internal/services"
	"github.com/mkarlin/gimmie/internal/validate"
)

//
// Service contracts (context-aware)
//

// ItemService defines the live-list operations consumed by HTTP handlers.
// Implementations must be safe for concurrent use and honor the provided
// context for cancellation.
type ItemService interface {
	// List returns the live items ordered by position ascending.
	List(ctx context.Context) ([]domain.Item, error)
	// Insert stores a validated item at the tail of the list.
	Insert(ctx context.Context, v validate.Item) (*domain.Item, error)
	// Update applies a validated field patch to a live item.
	Update(ctx context.Context, id int64, fields map[string]any) (*domain.Item, error)
	// Remove deletes a live item and archives it with the given reason.
	Remove(ctx context.Context, id int64, reason domain.ArchiveReason) error
	// Move swaps an item's position with its up or down neighbour.
	Move(ctx context.Context, id int64, dir domain.MoveDirection) (*domain.Item, error)
}

// ArchiveCatalog defines the archive operations consumed by HTTP handlers.
type ArchiveCatalog interface {
	// ListPage returns one page of archive entries plus the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.ArchiveEntry, int64, error)
	// Restore converts an archive entry back into a live item at the tail.
	Restore(ctx context.Context, archiveID int64) (*domain.Item, error)
}

// TransferPort defines the bulk import/export operations consumed by HTTP
// handlers.
type TransferPort interface {
	// Export returns a point-in-time snapshot of the live list.
	Export(ctx context.Context) (*services.Snapshot, error)
	// Import replaces the live list with rows, gated behind confirmation.
	Import(ctx context.Context, rows []map[string]any, confirmReplace bool) (int, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for items, the archive, and transfer.
// It depends on abstract service interfaces to keep transport concerns
// separate from list logic.
type Handlers struct {
	items    ItemService
	archive  ArchiveCatalog
	transfer TransferPort
}

// New constructs a Handlers instance bound to the given services.
func New(items ItemService, archive ArchiveCatalog, transfer TransferPort) *Handlers {
	return &Handlers{items: items, archive: archive, transfer: transfer}
}

// itemID parses the :id path parameter. A non-numeric id fails the request
// with 400 and returns ok=false.
func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// ListItems handles GET /items.
func (h *Handlers) ListItems(c *gin.Context) {
	items, err := repo.WithRetry(c.Request.Context(), func() ([]domain.Item, error) {
		return h.items.List(c.Request.Context())
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	if items == nil {
		items = []domain.Item{}
	}
	ok(c, http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// CreateItem handles POST /items. The raw body is decoded as a loose JSON
// object and run through the validators, so unknown keys are ignored and
// cost may arrive as a number or a currency string.
func (h *Handlers) CreateItem(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body must be a JSON object")
		return
	}

	v, err := validate.ItemData(raw)
	if err != nil {
		failFromErr(c, err)
		return
	}

	item, err := repo.WithRetry(c.Request.Context(), func() (*domain.Item, error) {
		return h.items.Insert(c.Request.Context(), v)
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusCreated, item)
}

// UpdateItem handles PUT /items/:id. Only recognized fields are applied;
// id and position are silently ignored.
func (h *Handlers) UpdateItem(c *gin.Context) {
	id, okID := itemID(c)
	if !okID {
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body must be a JSON object")
		return
	}

	patch, err := validate.ItemPatch(raw)
	if err != nil {
		failFromErr(c, err)
		return
	}

	item, err := repo.WithRetry(c.Request.Context(), func() (*domain.Item, error) {
		return h.items.Update(c.Request.Context(), id, patch)
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, item)
}

// DeleteItem handles DELETE /items/:id. The item moves to the archive with
// reason "deleted" and the survivors close ranks.
func (h *Handlers) DeleteItem(c *gin.Context) {
	id, okID := itemID(c)
	if !okID {
		return
	}

	err := repo.WithRetryErr(c.Request.Context(), func() error {
		return h.items.Remove(c.Request.Context(), id, domain.ReasonDeleted)
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	noContent(c)
}

// CompleteItem handles POST /items/:id/complete. Identical to delete except
// the archive records reason "completed".
func (h *Handlers) CompleteItem(c *gin.Context) {
	id, okID := itemID(c)
	if !okID {
		return
	}

	err := repo.WithRetryErr(c.Request.Context(), func() error {
		return h.items.Remove(c.Request.Context(), id, domain.ReasonComplete)
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	noContent(c)
}

// MoveItemRequest is the JSON payload for reordering an item.
type MoveItemRequest struct {
	Direction string `json:"direction"`
}

// MoveItem handles POST /items/:id/move. A move past the top or bottom is a
// no-op that returns the item unchanged with 200.
func (h *Handlers) MoveItem(c *gin.Context) {
	id, okID := itemID(c)
	if !okID {
		return
	}

	var req MoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body must be a JSON object with a direction")
		return
	}

	item, err := repo.WithRetry(c.Request.Context(), func() (*domain.Item, error) {
		return h.items.Move(c.Request.Context(), id, domain.MoveDirection(req.Direction))
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, item)
}
