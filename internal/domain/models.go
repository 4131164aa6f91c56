// Package domain defines the persistence models for wishlist items and the
// archive of removed items. These types are mapped with GORM and form the
// core data layer of the application.
package domain

import "time"

// ItemType classifies a wishlist entry as a want or a need.
type ItemType = string

// Valid item types.
const (
	TypeWant ItemType = "want"
	TypeNeed ItemType = "need"
)

// MoveDirection selects which neighbour an item swaps positions with.
type MoveDirection string

// Valid move directions.
const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// ArchiveReason records why an item left the live list.
type ArchiveReason string

// Valid archive reasons.
const (
	ReasonDeleted  ArchiveReason = "deleted"
	ReasonComplete ArchiveReason = "completed"
	ReasonReplaced ArchiveReason = "replaced_by_import"
)

// Item is a live wishlist entry.
//
// Positions of live items always form the contiguous sequence 1..N with no
// gaps or duplicates. That invariant is owned by services.ListService; no
// code outside it may write the position column. There is deliberately no
// unique index on position: move operations swap two rows inside one
// transaction and would trip a constraint mid-swap.
//
// Fields:
//   - ID: auto-increment primary key; never reused (SQLite AUTOINCREMENT).
//   - Name: non-empty, HTML-escaped, <= 255 chars.
//   - Cost: optional, non-negative, at most two decimal places.
//   - Link: optional URL, <= 2000 chars, scheme-normalized.
//   - Type: "want" or "need" (DB check constraint).
//   - AddedBy: display name of whoever added the item; "Unknown" by default.
//   - Position: 1-based rank in the shared list.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//
// Items have no soft-delete column: removal always moves the row into the
// archive table instead.
type Item struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null"`
	Cost      *float64  `json:"cost"       gorm:"type:numeric(10,2)"`
	Link      *string   `json:"link"       gorm:"type:text"`
	Type      ItemType  `json:"type"       gorm:"type:varchar(10);not null;default:'want';check:type IN ('want','need')"`
	AddedBy   string    `json:"added_by"   gorm:"type:varchar(100);not null;default:'Unknown'"`
	Position  int       `json:"position"   gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Item.
func (Item) TableName() string { return "items" }

// ArchiveEntry is an immutable historical copy of a removed Item.
//
// Entries carry every item field except position (archived items are not
// ranked). OriginalID is the id the item had while live; it is not unique
// here, since an item restored and removed again archives under a fresh
// live id each time. Entries are deleted only by a restore; they are never
// updated in place.
type ArchiveEntry struct {
	ID             int64         `json:"id"              gorm:"primaryKey;autoIncrement"`
	OriginalID     int64         `json:"original_id"     gorm:"not null;index"`
	Name           string        `json:"name"            gorm:"type:varchar(255);not null"`
	Cost           *float64      `json:"cost"            gorm:"type:numeric(10,2)"`
	Link           *string       `json:"link"            gorm:"type:text"`
	Type           ItemType      `json:"type"            gorm:"type:varchar(10)"`
	AddedBy        string        `json:"added_by"        gorm:"type:varchar(100)"`
	ArchivedReason ArchiveReason `json:"archived_reason" gorm:"type:varchar(20);not null;check:archived_reason IN ('deleted','completed','replaced_by_import')"`
	ArchivedAt     time.Time     `json:"archived_at"     gorm:"index"`
}

// TableName returns the database table name for ArchiveEntry.
func (ArchiveEntry) TableName() string { return "archive" }
