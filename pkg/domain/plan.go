package domain

// Budget allocation fractions applied to the per-day budget.
const (
	HotelShare  = 0.4
	FoodShare   = 0.3
	TravelShare = 0.2
	MiscShare   = 0.1
)

// DefaultTripDays is used when the trip length cannot be derived.
const DefaultTripDays = 5

// Breakdown splits the per-day budget into spending categories
type Breakdown struct {
	Hotel  float64 `json:"hotel"`
	Food   float64 `json:"food"`
	Travel float64 `json:"travel"`
	Misc   float64 `json:"misc"`
}

// Sum returns the total of all categories.
func (b Breakdown) Sum() float64 {
	return b.Hotel + b.Food + b.Travel + b.Misc
}

// BudgetInfo is the locally computed budget analysis of a request
type BudgetInfo struct {
	TotalBudget float64   `json:"total_budget"`
	Days        int       `json:"days"`
	PerDay      float64   `json:"per_day"`
	Breakdown   Breakdown `json:"breakdown"`
}

// Spot is a trending point of interest at the destination
type Spot struct {
	Name  string   `json:"name"`
	Desc  string   `json:"desc"`
	Lat   *float64 `json:"lat,omitempty"`
	Lon   *float64 `json:"lon,omitempty"`
	Image string   `json:"image,omitempty"`
}

// DayPlan is one day of the itinerary
type DayPlan struct {
	Day     int      `json:"day"`
	Summary string   `json:"summary"`
	Places  []string `json:"places"`
	EstCost float64  `json:"est_cost"`
}

// Hotel is a suggested place to stay
type Hotel struct {
	Name          string   `json:"name"`
	PricePerNight string   `json:"price_per_night,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	Image         string   `json:"image,omitempty"`
}

// FoodSpot is a suggested restaurant or food stall
type FoodSpot struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Price string `json:"price,omitempty"`
	Image string `json:"image,omitempty"`
}

// CompositeResult is the full plan returned for a request. Every section is
// always present; a failed section is an empty slice, never nil.
type CompositeResult struct {
	Destination string     `json:"destination"`
	Dates       string     `json:"dates"`
	Mood        string     `json:"mood"`
	BudgetInfo  BudgetInfo `json:"budget_info"`
	Trends      []Spot     `json:"trends"`
	Photos      []string   `json:"photos"`
	Itinerary   []DayPlan  `json:"itinerary"`
	Hotels      []Hotel    `json:"hotels"`
	Foods       []FoodSpot `json:"foods"`
}

// Normalize replaces nil sections with empty slices so the wire format never
// carries null collections.
func (r *CompositeResult) Normalize() {
	if r.Trends == nil {
		r.Trends = []Spot{}
	}
	if r.Photos == nil {
		r.Photos = []string{}
	}
	if r.Itinerary == nil {
		r.Itinerary = []DayPlan{}
	}
	if r.Hotels == nil {
		r.Hotels = []Hotel{}
	}
	if r.Foods == nil {
		r.Foods = []FoodSpot{}
	}
	for i := range r.Itinerary {
		if r.Itinerary[i].Places == nil {
			r.Itinerary[i].Places = []string{}
		}
	}
}

// Clone returns a deep copy of the result.
func (r *CompositeResult) Clone() *CompositeResult {
	if r == nil {
		return nil
	}

	c := *r

	c.Trends = make([]Spot, len(r.Trends))
	for i, s := range r.Trends {
		s.Lat = cloneFloat(s.Lat)
		s.Lon = cloneFloat(s.Lon)
		c.Trends[i] = s
	}

	c.Photos = append(make([]string, 0, len(r.Photos)), r.Photos...)

	c.Itinerary = make([]DayPlan, len(r.Itinerary))
	for i, d := range r.Itinerary {
		d.Places = append(make([]string, 0, len(d.Places)), d.Places...)
		c.Itinerary[i] = d
	}

	c.Hotels = make([]Hotel, len(r.Hotels))
	for i, h := range r.Hotels {
		h.Rating = cloneFloat(h.Rating)
		c.Hotels[i] = h
	}

	c.Foods = append(make([]FoodSpot, 0, len(r.Foods)), r.Foods...)

	return &c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
