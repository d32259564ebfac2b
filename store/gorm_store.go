package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"macrolog/models"
)

// GormStore is the authoritative backing store over postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FetchProfile(id string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) InsertProfile(p *models.UserProfile) error {
	return s.db.Create(p).Error
}

func (s *GormStore) UpdateGoals(id string, goals models.Goals) error {
	res := s.db.Model(&models.UserProfile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"calories": goals.Calories,
			"protein":  goals.Protein,
			"carbs":    goals.Carbs,
			"sugar":    goals.Sugar,
			"fat":      goals.Fat,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) FetchEntries(ownerID string) ([]models.FoodEntry, error) {
	var entries []models.FoodEntry
	err := s.db.
		Where("owner_id = ?", ownerID).
		Order("date ASC").
		Find(&entries).Error
	return entries, err
}

func (s *GormStore) InsertEntry(e models.FoodEntry) (models.FoodEntry, error) {
	e.ID = uuid.NewString()
	if err := s.db.Create(&e).Error; err != nil {
		return models.FoodEntry{}, err
	}
	return e, nil
}

func (s *GormStore) UpdateEntry(id, ownerID string, patch models.EntryPatch) error {
	fields := map[string]interface{}{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Calories != nil {
		fields["calories"] = *patch.Calories
	}
	if patch.Protein != nil {
		fields["protein"] = *patch.Protein
	}
	if patch.Carbs != nil {
		fields["carbs"] = *patch.Carbs
	}
	if patch.Sugar != nil {
		fields["sugar"] = *patch.Sugar
	}
	if patch.Fat != nil {
		fields["fat"] = *patch.Fat
	}
	if len(fields) == 0 {
		return nil
	}
	res := s.db.Model(&models.FoodEntry{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteEntry(id, ownerID string) error {
	return s.db.
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.FoodEntry{}).Error
}
