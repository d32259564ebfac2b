package controllers

import (
	"net/http"
	"time"

	"macrolog/models"
	"macrolog/services"

	"github.com/gin-gonic/gin"
)

// ListEntries returns the loaded collection; ?date=2006-01-02 narrows it to
// one local calendar day.
func ListEntries(c *gin.Context) {
	if ds := c.Query("date"); ds != "" {
		day, err := time.ParseInLocation("2006-01-02", ds, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entrySvc.EntriesForDay(day)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entrySvc.Snapshot()})
}

// TodaySummary returns today's entries with their aggregated totals.
func TodaySummary(c *gin.Context) {
	entries := entrySvc.EntriesForToday()
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"totals":  services.Aggregate(entries),
	})
}

type AddEntryInput struct {
	Name     string  `json:"name" binding:"required"`
	Calories float64 `json:"calories" binding:"gte=0"`
	Protein  float64 `json:"protein" binding:"gte=0"`
	Carbs    float64 `json:"carbs" binding:"gte=0"`
	Sugar    float64 `json:"sugar" binding:"gte=0"`
	Fat      float64 `json:"fat" binding:"gte=0"`
}

func AddEntry(c *gin.Context) {
	var input AddEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok := entrySvc.Add(models.EntryFields{
		Name:     input.Name,
		Calories: input.Calories,
		Protein:  input.Protein,
		Carbs:    input.Carbs,
		Sugar:    input.Sugar,
		Fat:      input.Fat,
	})
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "entry not added"})
		return
	}
	c.Status(http.StatusCreated)
}

func EditEntry(c *gin.Context) {
	var patch models.EntryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !entrySvc.Edit(c.Param("id"), patch) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "entry not updated"})
		return
	}
	c.Status(http.StatusNoContent)
}

func DeleteEntry(c *gin.Context) {
	if !entrySvc.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearEntries empties the food log and reports what actually got deleted.
func ClearEntries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"outcomes": entrySvc.ClearAll()})
}
