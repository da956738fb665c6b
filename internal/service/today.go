package service

import (
	"github.com/saadjs/keto-cli/internal/model"
	"github.com/saadjs/keto-cli/internal/plan"
)

type DayTotals struct {
	Date              string   `json:"date"`
	Calories          float64  `json:"calories"`
	FatG              float64  `json:"fat_g"`
	ProteinG          float64  `json:"protein_g"`
	CarbsG            float64  `json:"carbs_g"`
	Ratio             *float64 `json:"ratio,omitempty"`
	GoalCalories      float64  `json:"goal_calories,omitempty"`
	GoalFatG          float64  `json:"goal_fat_g,omitempty"`
	GoalProteinG      float64  `json:"goal_protein_g,omitempty"`
	GoalCarbsG        float64  `json:"goal_carbs_g,omitempty"`
	GoalRatio         float64  `json:"goal_ratio,omitempty"`
	RemainingCalories float64  `json:"remaining_calories,omitempty"`
	RemainingFatG     float64  `json:"remaining_fat_g,omitempty"`
	RemainingProteinG float64  `json:"remaining_protein_g,omitempty"`
	RemainingCarbsG   float64  `json:"remaining_carbs_g,omitempty"`
	HasGoal           bool     `json:"has_goal"`
}

// SummarizeDays totals log entries per date. Free-text and empty slots add
// nothing; a recipe that was since deleted is skipped.
func SummarizeDays(dates []string, entries []*plan.Entry, recipes map[int64]model.Recipe, target *model.Target) []DayTotals {
	byDate := make(map[string]*DayTotals, len(dates))
	out := make([]DayTotals, len(dates))
	for i, d := range dates {
		out[i].Date = d
		byDate[d] = &out[i]
	}
	for _, e := range entries {
		day, ok := byDate[e.Slot.Date]
		if !ok || e.RecipeID == nil {
			continue
		}
		r, ok := recipes[*e.RecipeID]
		if !ok {
			continue
		}
		factor := e.PercentEaten / 100
		day.Calories += r.TotalCalories * factor
		day.FatG += r.TotalFat * factor
		day.ProteinG += r.TotalProtein * factor
		day.CarbsG += r.TotalCarbs * factor
	}
	for i := range out {
		day := &out[i]
		day.Ratio = KetoRatio(day.FatG, day.ProteinG, day.CarbsG)
		if target == nil {
			continue
		}
		day.HasGoal = true
		day.GoalCalories = target.Calories
		day.GoalFatG = target.Fat
		day.GoalProteinG = target.Protein
		day.GoalCarbsG = target.Carbs
		day.GoalRatio = target.Ratio
		day.RemainingCalories = target.Calories - day.Calories
		day.RemainingFatG = target.Fat - day.FatG
		day.RemainingProteinG = target.Protein - day.ProteinG
		day.RemainingCarbsG = target.Carbs - day.CarbsG
	}
	return out
}
