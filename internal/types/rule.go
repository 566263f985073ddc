package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProductivityProductive  = "productive"
	ProductivityNeutral     = "neutral"
	ProductivityDistracting = "distracting"
	ProductivityExcluded    = "excluded"
)

const (
	ListProductive  = "productive"
	ListDistracting = "distracting"
	ListNeutral     = "neutral"
	ListExcluded    = "excluded"
)

// PlatformRule is a user override for an app name or bare domain.
type PlatformRule struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_rule_user_domain,unique" json:"user_id"`
	User         *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Domain       string         `gorm:"column:domain;not null;index:idx_rule_user_domain,unique" json:"domain"`
	Productivity string         `gorm:"column:productivity;not null;default:'neutral'" json:"productivity"`
	Category     string         `gorm:"column:category" json:"category"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PlatformRule) TableName() string { return "platform_rule" }

// URLRule matches a full URL or a pattern with one leading or trailing
// wildcard, e.g. "youtube.com/playlist*". URL rules beat platform rules.
type URLRule struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_rule_user_pattern,unique" json:"user_id"`
	User         *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	URLPattern   string         `gorm:"column:url_pattern;not null;index:idx_rule_user_pattern,unique" json:"url_pattern"`
	Productivity string         `gorm:"column:productivity;not null;default:'neutral'" json:"productivity"`
	Category     string         `gorm:"column:category" json:"category"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (URLRule) TableName() string { return "url_rule" }

// CustomListEntry is a free-text pattern on one of the user's lists
// (productive / distracting / neutral / excluded), matched by substring.
type CustomListEntry struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_list_user_type_pattern,unique" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ListType  string         `gorm:"column:list_type;not null;index:idx_list_user_type_pattern,unique" json:"list_type"`
	Pattern   string         `gorm:"column:pattern;not null;index:idx_list_user_type_pattern,unique" json:"pattern"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CustomListEntry) TableName() string { return "custom_list_entry" }
