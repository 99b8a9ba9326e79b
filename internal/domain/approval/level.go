package approval

import (
	"time"

	"github.com/google/uuid"
)

// Level is one stage of a tenant's approval pipeline for a document
// type. Levels are ordered by LevelIndex starting at 0; each level maps
// to one or more roles empowered to decide at that stage. This is
// configuration data: document processing reads it and never mutates it.
type Level struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_approval_levels_tenant_type_idx"`
	TypeKey    string      `gorm:"type:varchar(64);not null;uniqueIndex:idx_approval_levels_tenant_type_idx"`
	LevelIndex int         `gorm:"not null;uniqueIndex:idx_approval_levels_tenant_type_idx"`
	Name       string      `gorm:"type:varchar(128);not null"`
	Roles      []LevelRole `gorm:"foreignKey:LevelID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the gorm table name
func (Level) TableName() string {
	return "approval_levels"
}

// LevelRole maps an approval level to a role empowered to decide at it
type LevelRole struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	LevelID uuid.UUID `gorm:"type:uuid;not null;index"`
	RoleID  uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName overrides the gorm table name
func (LevelRole) TableName() string {
	return "approval_level_roles"
}

// RoleIDs returns the role ids mapped to this level
func (l *Level) RoleIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(l.Roles))
	for _, r := range l.Roles {
		ids = append(ids, r.RoleID)
	}
	return ids
}

// HasRole reports whether any of the given roles is mapped to this level
func (l *Level) HasRole(roleIDs []uuid.UUID) bool {
	for _, r := range l.Roles {
		for _, id := range roleIDs {
			if r.RoleID == id {
				return true
			}
		}
	}
	return false
}
