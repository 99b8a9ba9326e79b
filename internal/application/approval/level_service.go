package approval

import (
	"context"
	"fmt"
	"time"

	"github.com/docflow/backend/internal/domain/approval"
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LevelService manages per-tenant approval pipeline configuration
type LevelService struct {
	levels approval.LevelRepository
	logger *zap.Logger
}

// NewLevelService creates a new LevelService
func NewLevelService(levels approval.LevelRepository, logger *zap.Logger) *LevelService {
	return &LevelService{
		levels: levels,
		logger: logger,
	}
}

// LevelInput describes one approval level in a save request
type LevelInput struct {
	Name    string      `json:"name" binding:"required,min=1,max=128"`
	RoleIDs []uuid.UUID `json:"role_ids" binding:"required,min=1"`
}

// SaveLevelsRequest replaces a document type's approval pipeline. An
// empty levels list removes the pipeline; documents of the type then
// auto-approve on submit.
type SaveLevelsRequest struct {
	TypeKey string       `json:"type_key" binding:"required,typekey"`
	Levels  []LevelInput `json:"levels"`
}

// LevelResponse represents one configured approval level
type LevelResponse struct {
	ID         uuid.UUID   `json:"id"`
	LevelIndex int         `json:"level_index"`
	Name       string      `json:"name"`
	RoleIDs    []uuid.UUID `json:"role_ids"`
}

// GetLevels returns the ordered approval pipeline for a document type
func (s *LevelService) GetLevels(ctx context.Context, tenantID uuid.UUID, typeKey string) ([]LevelResponse, error) {
	levels, err := s.levels.LevelsForType(ctx, tenantID, typeKey)
	if err != nil {
		return nil, err
	}

	result := make([]LevelResponse, len(levels))
	for i, level := range levels {
		result[i] = LevelResponse{
			ID:         level.ID,
			LevelIndex: level.LevelIndex,
			Name:       level.Name,
			RoleIDs:    level.RoleIDs(),
		}
	}
	return result, nil
}

// SaveLevels replaces the approval pipeline for a document type.
// Changes apply to future submissions; documents already in flight keep
// being decided against the configuration rows loaded per decision.
func (s *LevelService) SaveLevels(ctx context.Context, tenantID uuid.UUID, req SaveLevelsRequest) ([]LevelResponse, error) {
	now := time.Now()
	levels := make([]approval.Level, len(req.Levels))
	for i, in := range req.Levels {
		if len(in.RoleIDs) == 0 {
			return nil, shared.NewDomainError(shared.CodeNoEligibleApprovers, fmt.Sprintf("Approval level %d must map at least one role", i))
		}
		level := approval.Level{
			ID:         uuid.New(),
			TenantID:   tenantID,
			TypeKey:    req.TypeKey,
			LevelIndex: i,
			Name:       in.Name,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		for _, roleID := range in.RoleIDs {
			level.Roles = append(level.Roles, approval.LevelRole{
				ID:      uuid.New(),
				LevelID: level.ID,
				RoleID:  roleID,
			})
		}
		levels[i] = level
	}

	if err := s.levels.SaveLevels(ctx, tenantID, req.TypeKey, levels); err != nil {
		return nil, err
	}

	s.logger.Info("Approval pipeline updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("type_key", req.TypeKey),
		zap.Int("levels", len(levels)),
	)

	return s.GetLevels(ctx, tenantID, req.TypeKey)
}
