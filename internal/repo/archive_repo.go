// Package repo implements the persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the archive
// of removed items.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mkarlin/gimmie/internal/domain"
)

// CreateArchiveEntry copies every field of a live item except its position
// into a new archive row with the given reason and the current UTC time.
func CreateArchiveEntry(ctx context.Context, db *gorm.DB, it *domain.Item, reason domain.ArchiveReason) (*domain.ArchiveEntry, error) {
	e := &domain.ArchiveEntry{
		OriginalID:     it.ID,
		Name:           it.Name,
		Cost:           it.Cost,
		Link:           it.Link,
		Type:           it.Type,
		AddedBy:        it.AddedBy,
		ArchivedReason: reason,
		ArchivedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// GetArchiveEntry fetches a single archive entry by id, or ErrNotFound.
func GetArchiveEntry(ctx context.Context, db *gorm.DB, id int64) (*domain.ArchiveEntry, error) {
	var e domain.ArchiveEntry
	if err := db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ListArchive returns all archive entries, newest first.
func ListArchive(ctx context.Context, db *gorm.DB) ([]domain.ArchiveEntry, error) {
	var out []domain.ArchiveEntry
	err := db.WithContext(ctx).Order("archived_at desc, id desc").Find(&out).Error
	return out, err
}

// ListArchivePage returns one page of archive entries, newest first. Use
// CountArchive for pagination metadata.
func ListArchivePage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ArchiveEntry, error) {
	var out []domain.ArchiveEntry
	err := db.WithContext(ctx).
		Order("archived_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountArchive returns the total number of archive entries.
func CountArchive(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.ArchiveEntry{}).Count(&total).Error
	return total, err
}

// DeleteArchiveEntry removes an archive row, normally as the second half
// of a restore transaction. Returns ErrNotFound when no row was affected.
func DeleteArchiveEntry(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Delete(&domain.ArchiveEntry{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
