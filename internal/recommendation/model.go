package recommendation

// TerrainRec is a terrain suggested to a user, optionally carrying the
// aggregate that ranked it.
type TerrainRec struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Location         string  `json:"location"`
	PricePerSlot     float64 `json:"price_per_slot"`
	Description      string  `json:"description,omitempty"`
	ReservationCount int     `json:"reservation_count,omitempty"`
}

// RatedTerrain is a terrain ranked by its average rating.
type RatedTerrain struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
	AvgScore float64 `json:"avg_score"`
}

// TimeCount is a popular start time with its reservation count.
type TimeCount struct {
	Start string `json:"start"`
	Count int    `json:"count"`
}

// HourlyRec pairs one of the user's habitual start times with the
// terrains free at that time today.
type HourlyRec struct {
	Start    string   `json:"start"`
	Terrains []string `json:"terrains"`
}

// Promo is an active promotion with the discounted slot price.
type Promo struct {
	TerrainID    string  `json:"terrain_id"`
	TerrainName  string  `json:"terrain_name"`
	Location     string  `json:"location"`
	PricePerSlot float64 `json:"price_per_slot"`
	Discount     int     `json:"discount"`
	PromoPrice   float64 `json:"promo_price"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
}

// Personalized groups the two personalized lists: terrains the user
// books often, and terrains near those they already know.
type Personalized struct {
	Frequent []TerrainRec `json:"frequent"`
	Similar  []TerrainRec `json:"similar"`
}

// WeatherAdvice is the weather-driven recommendation.
type WeatherAdvice struct {
	City        string       `json:"city"`
	Description string       `json:"description"`
	TempC       float64      `json:"temp_c"`
	Covered     bool         `json:"covered"`
	Title       string       `json:"title"`
	Terrains    []TerrainRec `json:"terrains"`
}

// PriceAdvice is the price-band recommendation around the user's
// average spend.
type PriceAdvice struct {
	AvgAmount float64      `json:"avg_amount"`
	Terrains  []TerrainRec `json:"terrains"`
}
