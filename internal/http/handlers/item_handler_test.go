package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mkarlin/gimmie/internal/domain"
	"github.com/mkarlin/gimmie/internal/services"
	"github.com/mkarlin/gimmie/internal/validate"
)

//
// Stub services
//

type stubItems struct {
	items   []domain.Item
	listErr error

	inserted  *validate.Item
	insertOut *domain.Item

	updatedID     int64
	updatedFields map[string]any
	updateOut     *domain.Item
	updateErr     error

	removedID     int64
	removedReason domain.ArchiveReason
	removeErr     error

	movedID  int64
	movedDir domain.MoveDirection
	moveOut  *domain.Item
	moveErr  error
}

func (s *stubItems) List(context.Context) ([]domain.Item, error) {
	return s.items, s.listErr
}

func (s *stubItems) Insert(_ context.Context, v validate.Item) (*domain.Item, error) {
	s.inserted = &v
	return s.insertOut, nil
}

func (s *stubItems) Update(_ context.Context, id int64, fields map[string]any) (*domain.Item, error) {
	s.updatedID, s.updatedFields = id, fields
	return s.updateOut, s.updateErr
}

func (s *stubItems) Remove(_ context.Context, id int64, reason domain.ArchiveReason) error {
	s.removedID, s.removedReason = id, reason
	return s.removeErr
}

func (s *stubItems) Move(_ context.Context, id int64, dir domain.MoveDirection) (*domain.Item, error) {
	s.movedID, s.movedDir = id, dir
	return s.moveOut, s.moveErr
}

type stubArchive struct {
	entries    []domain.ArchiveEntry
	total      int64
	page       int
	pageSize   int
	restoreOut *domain.Item
	restoreErr error
	restoredID int64
}

func (s *stubArchive) ListPage(_ context.Context, page, pageSize int) ([]domain.ArchiveEntry, int64, error) {
	s.page, s.pageSize = page, pageSize
	return s.entries, s.total, nil
}

func (s *stubArchive) Restore(_ context.Context, id int64) (*domain.Item, error) {
	s.restoredID = id
	return s.restoreOut, s.restoreErr
}

type stubTransfer struct {
	snap      *services.Snapshot
	exportErr error

	importRows    []map[string]any
	importConfirm bool
	importN       int
	importErr     error
}

func (s *stubTransfer) Export(context.Context) (*services.Snapshot, error) {
	return s.snap, s.exportErr
}

func (s *stubTransfer) Import(_ context.Context, rows []map[string]any, confirm bool) (int, error) {
	s.importRows, s.importConfirm = rows, confirm
	return s.importN, s.importErr
}

//
// Harness
//

func newTestRouter(items ItemService, archive ArchiveCatalog, transfer TransferPort) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(items, archive, transfer)
	r := gin.New()
	r.GET("/items", h.ListItems)
	r.POST("/items", h.CreateItem)
	r.PUT("/items/:id", h.UpdateItem)
	r.DELETE("/items/:id", h.DeleteItem)
	r.POST("/items/:id/complete", h.CompleteItem)
	r.POST("/items/:id/move", h.MoveItem)
	r.GET("/archive", h.ListArchive)
	r.POST("/archive/:id/restore", h.RestoreItem)
	r.GET("/export", h.ExportItems)
	r.POST("/import", h.ImportItems)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	return body
}

//
// Item endpoint tests
//

func TestListItems_ReturnsOrderedItems(t *testing.T) {
	items := &stubItems{items: []domain.Item{
		{ID: 1, Name: "first", Position: 1},
		{ID: 2, Name: "second", Position: 2},
	}}
	r := newTestRouter(items, &stubArchive{}, &stubTransfer{})

	w := doJSON(t, r, http.MethodGet, "/items", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /items -> %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["count"] != float64(2) {
		t.Fatalf("count = %v, want 2", body["count"])
	}
}

func TestListItems_EmptyListIsNotNull(t *testing.T) {
	r := newTestRouter(&stubItems{}, &stubArchive{}, &stubTransfer{})

	w := doJSON(t, r, http.MethodGet, "/items", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /items -> %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"items":[]`) {
		t.Fatalf("expected empty array, got %s", w.Body.String())
	}
}

func TestCreateItem_ValidatesAndInserts(t *testing.T) {
	items := &stubItems{insertOut: &domain.Item{ID: 9, Name: "Bike", Position: 4}}
	r := newTestRouter(items, &stubArchive{}, &stubTransfer{})

	w := doJSON(t, r, http.MethodPost, "/items", `{"name":"Bike","cost":"$120.50","added_by":"Sam"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /items -> %d: %s", w.Code, w.Body.String())
	}
	if items.inserted == nil || items.inserted.Name != "Bike" || items.inserted.AddedBy != "Sam" {
		t.Fatalf("service got %+v", items.inserted)
	}
	if items.inserted.Cost == nil || *items.inserted.Cost != 120.50 {
		t.Fatalf("currency string not normalized: %+v", items.inserted.Cost)
	}
	if items.inserted.Type != domain.TypeWant {
		t.Fatalf("absent type should default to want, got %q", items.inserted.Type)
	}
}

func TestCreateItem_ValidationFailure(t *testing.T) {
	items := &stubItems{}
	r := newTestRouter(items, &stubArchive{}, &stubTransfer{})

	w := doJSON(t, r, http.MethodPost, "/items", `{"name":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["code"] != ErrCodeValidationFailed {
		t.Fatalf("code = %v", body["code"])
	}
	if items.inserted != nil {
		t.Fatalf("invalid input reached the service")
	}
}

func TestCreateItem_NonObjectBody(t *testing.T) {
	r := newTestRouter(&stubItems{}, &stubArchive{}, &stubTransfer{})

	w := doJSON(t, r, http.MethodPost, "/items", `[1,2,3]`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-object body, got %d", w.Code)
	}
}

func TestUpdateItem_PatchesFields(t *testing.T) {
	items := &stubItems{updateOut: &domain.Item{ID: 3, Name: "Renamed"}}
	r := newTestRouter(items, &stubArchive{}, &stubTransfer{})

	w := doJSON(t, r, http.MethodPut, "/items/3", `{"name":"Renamed","position":99}`)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /items/3 -> %d: %s", w.Code, w.Body.String())
	}
	if items.updatedID != 3 {
		t.Fatalf("service got id %d", items.updatedID)
	}
	if _, hasPos := items.updatedFields["position"]; hasPos {
		t.Fatalf("position must never pass through a patch: %v", items.updatedFields)
	}
}

func TestUpdateItem_NotFound(t *testing.T) {
	items := &stubItems{updateErr: services.ErrItemNotFound}
	r := newTestRouter(items, &stubArchive{}, &stubTransfer{})

	w := doJSON(t, r, http.MethodPut, "/items/77", `{"name":"x"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["code"] != ErrCodeNotFound {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestUpdateItem_BadID(t *testing.T) {
	r := newTestRouter(&stubItems{}, &stubArchive{}, &stubTransfer{})

	w := doJSON(t, r, http.MethodPut, "/items/abc", `{"name":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", w.Code)
	}
}

func TestDeleteItem_ArchivesAsDeleted(t *testing.T) {
	items := &stubItems{}
	r := newTestRouter(items, &stubArchive{}, &stubTransfer{})

	w := doJSON(t, r, http.MethodDelete, "/items/5", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE /items/5 -> %d", w.Code)
	}
	if items.removedID != 5 || items.removedReason != domain.ReasonDeleted {
		t.Fatalf("service got (%d, %s)", items.removedID, items.removedReason)
	}
}

func TestCompleteItem_ArchivesAsCompleted(t *testing.T) {
	items := &stubItems{}
	r := newTestRouter(items, &stubArchive{}, &stubTransfer{})

	w := doJSON(t, r, http.MethodPost, "/items/5/complete", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("POST /items/5/complete -> %d", w.Code)
	}
	if items.removedReason != domain.ReasonComplete {
		t.Fatalf("reason = %s", items.removedReason)
	}
}

func TestMoveItem_PassesDirection(t *testing.T) {
	items := &stubItems{moveOut: &domain.Item{ID: 2, Position: 1}}
	r := newTestRouter(items, &stubArchive{}, &stubTransfer{})

	w := doJSON(t, r, http.MethodPost, "/items/2/move", `{"direction":"up"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /items/2/move -> %d: %s", w.Code, w.Body.String())
	}
	if items.movedID != 2 || items.movedDir != domain.MoveUp {
		t.Fatalf("service got (%d, %s)", items.movedID, items.movedDir)
	}
}

func TestMoveItem_InvalidDirection(t *testing.T) {
	items := &stubItems{moveErr: services.ErrInvalidDirection}
	r := newTestRouter(items, &stubArchive{}, &stubTransfer{})

	w := doJSON(t, r, http.MethodPost, "/items/2/move", `{"direction":"sideways"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
