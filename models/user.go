package models

// UserProfile is the authenticated user's profile row. The ID comes from the
// identity provider at signup and never changes afterwards.
type UserProfile struct {
	ID    string `gorm:"primaryKey" json:"id"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Name  string `json:"name"`
	Goals Goals  `gorm:"embedded" json:"goals"`
}

// Goals holds the daily macro-nutrient targets.
type Goals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Sugar    float64 `json:"sugar"`
	Fat      float64 `json:"fat"`
}

// DefaultGoals is the baseline every new account starts with.
func DefaultGoals() Goals {
	return Goals{Calories: 2000, Protein: 120, Carbs: 250, Sugar: 50, Fat: 70}
}
