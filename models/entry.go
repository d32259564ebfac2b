package models

import "time"

// FoodEntry is one logged food item with its macro snapshot. The backing
// store assigns ID on insert; Date is stamped at creation and never
// recomputed on edit.
type FoodEntry struct {
	ID       string    `gorm:"primaryKey" json:"id"`
	OwnerID  string    `gorm:"index" json:"owner_id"`
	Name     string    `gorm:"not null" json:"name"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein"`
	Carbs    float64   `json:"carbs"`
	Sugar    float64   `json:"sugar"`
	Fat      float64   `json:"fat"`
	Date     time.Time `gorm:"index" json:"date"`
}

// EntryFields is the caller-supplied payload for a new entry. The service
// stamps Date and OwnerID, the store assigns ID.
type EntryFields struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Sugar    float64 `json:"sugar"`
	Fat      float64 `json:"fat"`
}

// EntryPatch enumerates exactly the fields an edit may change. ID, OwnerID
// and Date are immutable.
type EntryPatch struct {
	Name     *string  `json:"name"`
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Sugar    *float64 `json:"sugar"`
	Fat      *float64 `json:"fat"`
}

// Apply merges the patch over e, touching only the patchable fields.
func (p EntryPatch) Apply(e *FoodEntry) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Calories != nil {
		e.Calories = *p.Calories
	}
	if p.Protein != nil {
		e.Protein = *p.Protein
	}
	if p.Carbs != nil {
		e.Carbs = *p.Carbs
	}
	if p.Sugar != nil {
		e.Sugar = *p.Sugar
	}
	if p.Fat != nil {
		e.Fat = *p.Fat
	}
}

// MacroTotals is the element-wise sum of macro fields across a set of
// entries. The zero value is the identity element.
type MacroTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Sugar    float64 `json:"sugar"`
	Fat      float64 `json:"fat"`
}
