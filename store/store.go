// Package store persists pathways and syntheses with gorm.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrewpaige1/eduengage-api/logger"
	"github.com/andrewpaige1/eduengage-api/models"
	"github.com/andrewpaige1/eduengage-api/pathway"
	"github.com/andrewpaige1/eduengage-api/synthesis"
)

var ErrNotFound = errors.New("record not found")

type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) *Store {
	return &Store{db: db, log: baseLog.With("component", "Store")}
}

// EnsureUser returns the user for auth0ID, creating it on first sight and
// refreshing the nickname when a non-empty one differs.
func (s *Store) EnsureUser(ctx context.Context, auth0ID, nickname string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Auth0ID: auth0ID, Nickname: nickname}
		if err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "auth0_id"}}, DoNothing: true}).
			Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		if user.ID == 0 {
			// Lost a creation race; read the winner.
			if err := s.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
				return nil, fmt.Errorf("reload user: %w", err)
			}
		}
		s.log.Info("created user", "auth0_subject", auth0ID)
	case err != nil:
		return nil, fmt.Errorf("find user: %w", err)
	case nickname != "" && user.Nickname != nickname:
		user.Nickname = nickname
		if err := s.db.WithContext(ctx).Model(&user).Update("nickname", nickname).Error; err != nil {
			return nil, fmt.Errorf("update nickname: %w", err)
		}
	}
	return &user, nil
}

func (s *Store) userID(tx *gorm.DB, auth0ID string) (uint, error) {
	var user models.User
	if err := tx.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("owner %q: %w", auth0ID, ErrNotFound)
		}
		return 0, err
	}
	return user.ID, nil
}

// CreatePathway stores p in a single transaction. p.ID must be set.
func (s *Store) CreatePathway(ctx context.Context, p pathway.Pathway) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		uid, err := s.userID(tx, p.OwnerID)
		if err != nil {
			return err
		}
		row := pathwayRow(p, uid)
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create pathway: %w", err)
		}
		return nil
	})
}

func (s *Store) GetPathway(ctx context.Context, publicID string) (pathway.Pathway, error) {
	var row models.Pathway
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Nodes", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal ASC") }).
		Preload("Edges", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal ASC") }).
		Where("public_id = ?", publicID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pathway.Pathway{}, fmt.Errorf("pathway %q: %w", publicID, ErrNotFound)
		}
		return pathway.Pathway{}, err
	}
	return pathwayFromRow(row), nil
}

func (s *Store) ListPathways(ctx context.Context, ownerID string) ([]pathway.Pathway, error) {
	var rows []models.Pathway
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Nodes", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal ASC") }).
		Preload("Edges", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal ASC") }).
		Joins("JOIN users ON users.id = pathways.user_id").
		Where("users.auth0_id = ?", ownerID).
		Order("pathways.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]pathway.Pathway, 0, len(rows))
	for _, r := range rows {
		out = append(out, pathwayFromRow(r))
	}
	return out, nil
}

// SaveProgress writes node completion/unlock flags and the pathway's UpdatedAt.
// Structure (nodes, edges, titles) is never changed here.
func (s *Store) SaveProgress(ctx context.Context, p pathway.Pathway) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Pathway
		if err := tx.Where("public_id = ?", p.ID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("pathway %q: %w", p.ID, ErrNotFound)
			}
			return err
		}
		for _, n := range p.Nodes {
			res := tx.Model(&models.PathwayNode{}).
				Where("pathway_id = ? AND node_key = ?", row.ID, n.ID).
				Updates(map[string]interface{}{"completed": n.Completed, "unlocked": n.Unlocked})
			if res.Error != nil {
				return fmt.Errorf("save node %q: %w", n.ID, res.Error)
			}
		}
		return tx.Model(&row).UpdateColumn("updated_at", p.UpdatedAt).Error
	})
}

func (s *Store) DeletePathway(ctx context.Context, publicID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Pathway
		if err := tx.Where("public_id = ?", publicID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("pathway %q: %w", publicID, ErrNotFound)
			}
			return err
		}
		if err := tx.Unscoped().Where("pathway_id = ?", row.ID).Delete(&models.PathwayEdge{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("pathway_id = ?", row.ID).Delete(&models.PathwayNode{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&row).Error
	})
}

func (s *Store) CreateSynthesis(ctx context.Context, syn synthesis.Synthesis) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		uid, err := s.userID(tx, syn.OwnerID)
		if err != nil {
			return err
		}
		row := synthesisRow(syn, uid)
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create synthesis: %w", err)
		}
		return nil
	})
}

func (s *Store) GetSynthesis(ctx context.Context, publicID string) (synthesis.Synthesis, error) {
	var row models.Synthesis
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Nodes", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal ASC") }).
		Preload("Edges", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal ASC") }).
		Where("public_id = ?", publicID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return synthesis.Synthesis{}, fmt.Errorf("synthesis %q: %w", publicID, ErrNotFound)
		}
		return synthesis.Synthesis{}, err
	}
	return synthesisFromRow(row), nil
}

func (s *Store) ListSyntheses(ctx context.Context, ownerID string) ([]synthesis.Synthesis, error) {
	var rows []models.Synthesis
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Nodes", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal ASC") }).
		Preload("Edges", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal ASC") }).
		Joins("JOIN users ON users.id = syntheses.user_id").
		Where("users.auth0_id = ?", ownerID).
		Order("syntheses.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]synthesis.Synthesis, 0, len(rows))
	for _, r := range rows {
		out = append(out, synthesisFromRow(r))
	}
	return out, nil
}
