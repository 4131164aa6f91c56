// Package services – TransferService
//
// This file implements bulk transfer: exporting the live list as a
// timestamped snapshot and importing a snapshot back, replacing the live
// list wholesale. Import is destructive, so it is gated behind an explicit
// confirmation and archives everything it replaces.
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/mkarlin/gimmie/internal/domain"
	"github.com/mkarlin/gimmie/internal/repo"
	"github.com/mkarlin/gimmie/internal/validate"
)

// Snapshot is a point-in-time copy of the live list, used for exports and
// scheduled backups.
type Snapshot struct {
	Items      []domain.Item `json:"items"`
	ExportedAt time.Time     `json:"exported_at"`
	BackupType string        `json:"backup_type,omitempty"`
}

// TransferService implements import and export over the live list.
type TransferService struct {
	// DB is the GORM handle used for reads.
	DB *gorm.DB
	// Items owns the live ordering; the replace step of an import runs
	// through it so archiving and rebuilding share one transaction.
	Items *ListService
}

// NewTransferService constructs a TransferService.
func NewTransferService(db *gorm.DB, items *ListService) *TransferService {
	return &TransferService{DB: db, Items: items}
}

// Export returns the full live sequence and an export timestamp. It is a
// pure read; concurrent mutations are either fully included or fully
// absent, never half-applied.
func (s *TransferService) Export(ctx context.Context) (*Snapshot, error) {
	items, err := repo.ListItems(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Item{}
	}
	return &Snapshot{Items: items, ExportedAt: time.Now().UTC()}, nil
}

// Import replaces the live list with rows, in their given order, assigning
// fresh positions starting at 1. Every previously live item is archived
// with reason replaced_by_import.
//
// Safety: when the live list is non-empty and confirmReplace is false, the
// call fails with *ConfirmationRequiredError carrying the current count and
// nothing changes. Every row is validated before any write; one malformed
// row aborts the whole import with the live list untouched and unarchived.
// Returns the number of items imported.
func (s *TransferService) Import(ctx context.Context, rows []map[string]any, confirmReplace bool) (int, error) {
	tr := otel.Tracer("services/TransferService")
	ctx, span := tr.Start(ctx, "Import",
		trace.WithAttributes(attribute.Int("rows", len(rows)), attribute.Bool("confirm", confirmReplace)),
	)
	defer span.End()

	validated := make([]validate.Item, 0, len(rows))
	for _, raw := range rows {
		v, err := validate.ItemData(raw)
		if err != nil {
			return 0, err
		}
		validated = append(validated, v)
	}

	existing, err := repo.CountItems(ctx, s.DB)
	if err != nil {
		return 0, err
	}
	if existing > 0 && !confirmReplace {
		return 0, &ConfirmationRequiredError{ExistingCount: existing}
	}

	return s.Items.ReplaceAll(ctx, validated, domain.ReasonReplaced)
}
