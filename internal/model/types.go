package model

import "time"

type User struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

type Ingredient struct {
	ID             int64
	UserID         int64
	Name           string
	Type           string
	Units          string
	PercentFat     float64
	PercentCarbs   float64
	PercentProtein float64
	CaloriesPer100 float64
	Source         string
	Unmeasured     bool
	CreatedAt      time.Time
}

type Recipe struct {
	ID            int64
	UserID        int64
	Name          string
	Author        string
	MealType      string
	Notes         string
	TotalFat      float64
	TotalCarbs    float64
	TotalProtein  float64
	TotalCalories float64
	Ratio         *float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RecipeIngredient is a recipe line with macro contributions frozen when the
// recipe was created.
type RecipeIngredient struct {
	ID             int64
	RecipeID       int64
	IngredientID   int64
	IngredientName string
	Units          string
	Unmeasured     bool
	Position       int
	Amount         float64
	Fat            float64
	Carbs          float64
	Protein        float64
	Calories       float64
}

type Target struct {
	ID            int64
	UserID        int64
	Ratio         float64
	Calories      float64
	Fat           float64
	Protein       float64
	Carbs         float64
	NumMainMeals  int
	NumSnacks     int
	EffectiveDate string
	CreatedAt     time.Time
}

type TargetBreakdown struct {
	ID       int64
	TargetID int64
	Item     string
	Calories float64
	Fat      float64
	Protein  float64
	Carbs    float64
}

type KetoneReading struct {
	ID           int64
	UserID       int64
	Date         string
	Time         string
	KetoneLevel  *float64
	GlucoseLevel *float64
}
