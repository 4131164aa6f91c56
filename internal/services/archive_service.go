// Package services – ArchiveService
//
// This file implements the ArchiveService, the read/restore surface over
// the append-only record of removed items. Entries are written by
// ListService as part of its remove and replace transactions; this service
// lists them and converts them back into live items.
package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/mkarlin/gimmie/internal/domain"
	"github.com/mkarlin/gimmie/internal/repo"
)

// ArchiveService exposes the archive of removed items.
type ArchiveService struct {
	// DB is the GORM handle used for reads.
	DB *gorm.DB
	// Items is the ordered-list owner; restores go through it so the
	// insert-at-tail and the archive-row deletion share one transaction
	// under the ordering lock.
	Items *ListService
}

// NewArchiveService constructs an ArchiveService.
func NewArchiveService(db *gorm.DB, items *ListService) *ArchiveService {
	return &ArchiveService{DB: db, Items: items}
}

// List returns every archive entry, newest first.
func (s *ArchiveService) List(ctx context.Context) ([]domain.ArchiveEntry, error) {
	return repo.ListArchive(ctx, s.DB)
}

// ListPage returns one page of archive entries, newest first, plus the
// total count. Invalid page and pageSize values fall back to defaults.
func (s *ArchiveService) ListPage(ctx context.Context, page, pageSize int) ([]domain.ArchiveEntry, int64, error) {
	tr := otel.Tracer("services/ArchiveService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(attribute.Int("page", page), attribute.Int("page_size", pageSize)),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountArchive(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.ArchiveEntry{}, 0, nil
	}

	entries, err := repo.ListArchivePage(ctx, s.DB, offset, pageSize)
	return entries, total, err
}

// Restore turns an archive entry back into a live item at the tail of the
// list and deletes the entry, atomically. The restored item keeps the
// archived name, cost, link, type, and added_by, but gets a fresh id and
// position. Returns ErrArchiveEntryNotFound when the id is absent.
func (s *ArchiveService) Restore(ctx context.Context, archiveID int64) (*domain.Item, error) {
	return s.Items.RestoreFromArchive(ctx, archiveID)
}
