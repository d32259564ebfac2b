package controllers

import (
	"net/http"

	"macrolog/models"
	"macrolog/services"

	"github.com/gin-gonic/gin"
)

func pct(consumed, target float64) float64 {
	if target <= 0 {
		return 0
	}
	p := consumed / target
	if p > 1 {
		return 1
	}
	return p
}

// GetGoals returns the active goals next to today's consumed totals.
func GetGoals(c *gin.Context) {
	user := sessionSvc.Current()
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		return
	}

	totals := services.Aggregate(entrySvc.EntriesForToday())
	goals := user.Goals

	progress := map[string]interface{}{
		"calories": map[string]float64{"consumed": totals.Calories, "goal": goals.Calories, "percent": pct(totals.Calories, goals.Calories)},
		"protein":  map[string]float64{"consumed": totals.Protein, "goal": goals.Protein, "percent": pct(totals.Protein, goals.Protein)},
		"carbs":    map[string]float64{"consumed": totals.Carbs, "goal": goals.Carbs, "percent": pct(totals.Carbs, goals.Carbs)},
		"sugar":    map[string]float64{"consumed": totals.Sugar, "goal": goals.Sugar, "percent": pct(totals.Sugar, goals.Sugar)},
		"fat":      map[string]float64{"consumed": totals.Fat, "goal": goals.Fat, "percent": pct(totals.Fat, goals.Fat)},
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals, "progress": progress})
}

func UpdateGoals(c *gin.Context) {
	var req struct {
		Calories float64 `json:"calories" binding:"gte=0"`
		Protein  float64 `json:"protein" binding:"gte=0"`
		Carbs    float64 `json:"carbs" binding:"gte=0"`
		Sugar    float64 `json:"sugar" binding:"gte=0"`
		Fat      float64 `json:"fat" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok := sessionSvc.UpdateGoals(models.Goals{
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Sugar:    req.Sugar,
		Fat:      req.Fat,
	})
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "goals not saved"})
		return
	}
	c.Status(http.StatusNoContent)
}
