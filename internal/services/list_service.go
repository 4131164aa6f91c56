// Package services – ListService
//
// This file implements the ListService, the authoritative owner of the live
// wishlist and its ordering invariant: positions of live items always form
// the contiguous sequence 1..N with no gaps and no duplicates.
//
// Concurrency discipline: every operation that reads positions in order to
// decide a new position or a reindex (Insert, Remove, Move, ReplaceAll,
// Restore) takes the service mutex for its whole read-modify-write cycle,
// and additionally runs its writes inside one GORM transaction. The mutex
// serializes position arithmetic between concurrent requests; the
// transaction makes each multi-row mutation all-or-nothing, so readers
// never observe the list mid-reindex or an item both live and archived.
package services

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/mkarlin/gimmie/internal/domain"
	"github.com/mkarlin/gimmie/internal/repo"
	"github.com/mkarlin/gimmie/internal/validate"
)

// ListService owns the live item collection. All position writes go through
// it; nothing else may touch the position column.
type ListService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// mu serializes every position-mutating read-modify-write cycle.
	mu sync.Mutex
}

// NewListService constructs a ListService over the given database handle.
func NewListService(db *gorm.DB) *ListService {
	return &ListService{DB: db}
}

// List returns the live items ordered by position ascending.
func (s *ListService) List(ctx context.Context) ([]domain.Item, error) {
	return repo.ListItems(ctx, s.DB)
}

// Insert stores a validated item at the tail of the list (max position + 1,
// or 1 when the list is empty) and returns it with its assigned id,
// position, and timestamps. Tail assignment cannot collide: the max-read
// and the insert happen under the mutex and inside one transaction.
func (s *ListService) Insert(ctx context.Context, v validate.Item) (*domain.Item, error) {
	ctx, span := startSpan(ctx, "Insert")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var created *domain.Item
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		max, err := repo.MaxPosition(ctx, tx)
		if err != nil {
			return err
		}
		created, err = repo.CreateItem(ctx, tx, domain.Item{
			Name:     v.Name,
			Cost:     v.Cost,
			Link:     v.Link,
			Type:     v.Type,
			AddedBy:  v.AddedBy,
			Position: max + 1,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("item.id", created.ID), attribute.Int("item.position", created.Position))
	return created, nil
}

// Update applies a validated field patch to a live item. Position is never
// part of a patch, so no ordering lock is needed; updated_at is bumped by
// the store. Returns ErrItemNotFound when the id is absent and ErrEmptyPatch
// when the patch contains nothing to change.
func (s *ListService) Update(ctx context.Context, id int64, fields map[string]any) (*domain.Item, error) {
	ctx, span := startSpan(ctx, "Update", attribute.Int64("item.id", id))
	defer span.End()

	if len(fields) == 0 {
		return nil, ErrEmptyPatch
	}

	var out *domain.Item
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdateItemFields(ctx, tx, id, fields); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		var err error
		out, err = repo.GetItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Remove deletes a live item, records it in the archive with the given
// reason, and resequences the survivors to 1..N-1 in their existing
// relative order. The three steps are one atomic unit. Returns
// ErrItemNotFound when the id is absent.
func (s *ListService) Remove(ctx context.Context, id int64, reason domain.ArchiveReason) error {
	ctx, span := startSpan(ctx, "Remove",
		attribute.Int64("item.id", id), attribute.String("reason", string(reason)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		it, err := repo.GetItem(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if _, err := repo.CreateArchiveEntry(ctx, tx, it, reason); err != nil {
			return err
		}
		if err := repo.DeleteItem(ctx, tx, it.ID); err != nil {
			return err
		}
		return repo.ResequencePositions(ctx, tx)
	})
}

// Move swaps an item's position with its neighbour: position-1 for "up",
// position+1 for "down". Moving past a boundary, or when no neighbour
// exists, is a no-op that returns the item unchanged. A successful swap
// bumps updated_at on both rows.
func (s *ListService) Move(ctx context.Context, id int64, dir domain.MoveDirection) (*domain.Item, error) {
	ctx, span := startSpan(ctx, "Move",
		attribute.Int64("item.id", id), attribute.String("direction", string(dir)))
	defer span.End()

	if dir != domain.MoveUp && dir != domain.MoveDown {
		return nil, ErrInvalidDirection
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out *domain.Item
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		it, err := repo.GetItem(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		out = it

		target := it.Position - 1
		if dir == domain.MoveDown {
			target = it.Position + 1
		}
		if target < 1 {
			return nil // already at the top
		}

		other, err := repo.ItemAtPosition(ctx, tx, target)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil // already at the bottom
			}
			return err
		}

		if err := repo.UpdateItemPosition(ctx, tx, other.ID, it.Position); err != nil {
			return err
		}
		if err := repo.UpdateItemPosition(ctx, tx, it.ID, target); err != nil {
			return err
		}
		out, err = repo.GetItem(ctx, tx, it.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceAll archives every live item with the given reason, clears the
// list, and rebuilds it from rows in input order with positions 1..N. The
// whole exchange is one transaction: on any failure the previous list
// stays live and unarchived. Returns the number of items now live.
func (s *ListService) ReplaceAll(ctx context.Context, rows []validate.Item, reason domain.ArchiveReason) (int, error) {
	ctx, span := startSpan(ctx, "ReplaceAll", attribute.Int("rows", len(rows)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := repo.ListItems(ctx, tx)
		if err != nil {
			return err
		}
		for i := range existing {
			if _, err := repo.CreateArchiveEntry(ctx, tx, &existing[i], reason); err != nil {
				return err
			}
		}
		if err := repo.DeleteAllItems(ctx, tx); err != nil {
			return err
		}
		for i, r := range rows {
			if _, err := repo.CreateItem(ctx, tx, domain.Item{
				Name:     r.Name,
				Cost:     r.Cost,
				Link:     r.Link,
				Type:     r.Type,
				AddedBy:  r.AddedBy,
				Position: i + 1,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// RestoreFromArchive converts an archive entry back into a live item: the
// item lands at the tail with a fresh id and position, and the archive row
// is deleted. Both sides happen in one transaction. Returns
// ErrArchiveEntryNotFound when the entry is absent.
func (s *ListService) RestoreFromArchive(ctx context.Context, archiveID int64) (*domain.Item, error) {
	ctx, span := startSpan(ctx, "RestoreFromArchive", attribute.Int64("archive.id", archiveID))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var restored *domain.Item
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := repo.GetArchiveEntry(ctx, tx, archiveID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrArchiveEntryNotFound
			}
			return err
		}
		max, err := repo.MaxPosition(ctx, tx)
		if err != nil {
			return err
		}
		restored, err = repo.CreateItem(ctx, tx, domain.Item{
			Name:     e.Name,
			Cost:     e.Cost,
			Link:     e.Link,
			Type:     e.Type,
			AddedBy:  e.AddedBy,
			Position: max + 1,
		})
		if err != nil {
			return err
		}
		return repo.DeleteArchiveEntry(ctx, tx, e.ID)
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

// startSpan opens a tracing span for a list operation.
func startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tr := otel.Tracer("services/ListService")
	return tr.Start(ctx, op, trace.WithAttributes(attrs...))
}
