package agents

// Response schemas for each sub-task. Fields tagged required must be present
// and non-empty in every item; unreadable optional numbers are dropped.

type trendItem struct {
	Name string      `json:"name" validate:"required"`
	Desc string      `json:"desc"`
	Lat  optNumber `json:"lat"`
	Lon  optNumber `json:"lon"`
}

type dayItem struct {
	Day     flexNumber `json:"day" validate:"required,min=1"`
	Summary string     `json:"summary" validate:"required"`
	Places  []string   `json:"places"`
	EstCost optNumber  `json:"est_cost"`
}

type hotelItem struct {
	Name          string     `json:"name" validate:"required"`
	PricePerNight flexString `json:"price_per_night"`
	Rating        optNumber  `json:"rating"`
}

type foodItem struct {
	Name       string     `json:"name" validate:"required"`
	Cuisine    flexString `json:"cuisine"`
	PriceRange flexString `json:"price_range"`
}
