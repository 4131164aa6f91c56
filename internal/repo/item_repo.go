// Package repo implements the persistence layer for domain entities,
// backed by GORM. This file provides repository functions for live items.
//
// All functions are context-aware and accept a *gorm.DB handle, which may
// be transaction-bound; they follow the thin-repository approach: no
// business logic, only CRUD persistence and query composition. Position
// arithmetic (tail assignment, swaps, resequencing) is decided by the
// service layer; the functions here only execute it.
//
// Error semantics: a missing row surfaces gorm.ErrRecordNotFound (exported
// as ErrNotFound); other DB errors propagate unchanged.
package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mkarlin/gimmie/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist. It
// aliases gorm.ErrRecordNotFound for consistent checks across layers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateItem inserts a new item row at the given position with CreatedAt
// set to UTC. The caller is responsible for choosing a position that keeps
// the live sequence contiguous.
func CreateItem(ctx context.Context, db *gorm.DB, fields domain.Item) (*domain.Item, error) {
	it := fields
	it.ID = 0
	now := time.Now().UTC()
	it.CreatedAt = now
	it.UpdatedAt = now
	if err := db.WithContext(ctx).Create(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// GetItem fetches a single item by id, or ErrNotFound.
func GetItem(ctx context.Context, db *gorm.DB, id int64) (*domain.Item, error) {
	var it domain.Item
	if err := db.WithContext(ctx).First(&it, id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// ItemAtPosition fetches the item holding the given position, or ErrNotFound.
func ItemAtPosition(ctx context.Context, db *gorm.DB, position int) (*domain.Item, error) {
	var it domain.Item
	err := db.WithContext(ctx).Where("position = ?", position).First(&it).Error
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ListItems returns all live items ordered by position ascending.
func ListItems(ctx context.Context, db *gorm.DB) ([]domain.Item, error) {
	var out []domain.Item
	err := db.WithContext(ctx).Order("position asc").Find(&out).Error
	return out, err
}

// CountItems returns the number of live items.
func CountItems(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Item{}).Count(&total).Error
	return total, err
}

// MaxPosition returns the highest live position, or 0 when the list is empty.
func MaxPosition(ctx context.Context, db *gorm.DB) (int, error) {
	var max *int
	err := db.WithContext(ctx).Model(&domain.Item{}).
		Select("max(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// UpdateItemFields applies a validated column map to the item with the
// given id. GORM bumps updated_at automatically. Returns ErrNotFound when
// no row was affected.
func UpdateItemFields(ctx context.Context, db *gorm.DB, id int64, fields map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.Item{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateItemPosition moves the item with the given id to position. This
// also bumps updated_at, so a reordered item reports when it last changed.
func UpdateItemPosition(ctx context.Context, db *gorm.DB, id int64, position int) error {
	res := db.WithContext(ctx).Model(&domain.Item{}).Where("id = ?", id).Update("position", position)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItem removes the item row with the given id.
func DeleteItem(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Delete(&domain.Item{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllItems clears the live items table. Used by bulk import inside
// its replace transaction.
func DeleteAllItems(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&domain.Item{}).Error
}

// ResequencePositions rewrites positions to the contiguous range 1..N,
// preserving the current relative order. Rows already holding their target
// position are left untouched so their updated_at does not churn.
func ResequencePositions(ctx context.Context, db *gorm.DB) error {
	items, err := ListItems(ctx, db)
	if err != nil {
		return err
	}
	for i, it := range items {
		want := i + 1
		if it.Position == want {
			continue
		}
		if err := UpdateItemPosition(ctx, db, it.ID, want); err != nil {
			return err
		}
	}
	return nil
}

// CheckPositionIntegrity verifies that live positions form exactly 1..N
// with no duplicates. A violation is a programming defect in the ordering
// core; tests assert this after every mutation.
func CheckPositionIntegrity(ctx context.Context, db *gorm.DB) error {
	var positions []int
	err := db.WithContext(ctx).Model(&domain.Item{}).
		Order("position asc").
		Pluck("position", &positions).Error
	if err != nil {
		return err
	}
	for i, p := range positions {
		if p != i+1 {
			return fmt.Errorf("position integrity violated: want %d at rank %d, have %d (count=%d)",
				i+1, i, p, len(positions))
		}
	}
	return nil
}
