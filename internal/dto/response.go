package dto

import (
	"time"

	"github.com/djakk/covoiturage-libre/internal/models"
)

type PointResponse struct {
	Kind          string   `json:"kind"`
	Rank          int      `json:"rank"`
	City          string   `json:"city"`
	Lat           *float64 `json:"lat,omitempty"`
	Lon           *float64 `json:"lon,omitempty"`
	Price         *int     `json:"price,omitempty"`
	Seats         *int     `json:"seats,omitempty"`
	DepartureDate string   `json:"departure_date,omitempty"`
	DepartureTime string   `json:"departure_time"`
}

type TripResponse struct {
	Title             string          `json:"title"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone,omitempty"`
	Description       string          `json:"description,omitempty"`
	Comfort           string          `json:"comfort"`
	Smoking           *bool           `json:"smoking"`
	Age               *int            `json:"age,omitempty"`
	State             string          `json:"state"`
	MinimumPrice      int             `json:"minimum_price"`
	ConfirmationToken string          `json:"confirmation_token,omitempty"`
	EditionToken      string          `json:"edition_token,omitempty"`
	DeletionToken     string          `json:"deletion_token,omitempty"`
	Points            []PointResponse `json:"points"`
	CreatedAt         time.Time       `json:"created_at"`
}

type SegmentResponse struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Price int `json:"price"`
	Seats int `json:"seats"`
}

type ValidationErrorResponse struct {
	Errors map[string][]string `json:"errors"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

// ToTripResponse renders the public view of a trip: the confirmation token is
// its address, the edit and delete capabilities stay private.
func ToTripResponse(t *models.Trip, minimumPrice int) TripResponse {
	resp := TripResponse{
		Title:             t.Title,
		Name:              t.Name,
		Email:             t.Email,
		Phone:             t.Phone,
		Description:       t.Description,
		Comfort:           t.Comfort,
		Smoking:           t.Smoking,
		Age:               t.Age,
		State:             string(t.State),
		MinimumPrice:      minimumPrice,
		ConfirmationToken: t.ConfirmationToken,
		Points:            make([]PointResponse, len(t.Points)),
		CreatedAt:         t.CreatedAt,
	}
	for i := range t.Points {
		resp.Points[i] = toPointResponse(&t.Points[i])
	}
	return resp
}

// ToPrivateTripResponse additionally exposes the edit and delete tokens; only
// ever sent back to the trip's owner (create and edit responses).
func ToPrivateTripResponse(t *models.Trip, minimumPrice int) TripResponse {
	resp := ToTripResponse(t, minimumPrice)
	resp.EditionToken = t.EditionToken
	resp.DeletionToken = t.DeletionToken
	return resp
}

func toPointResponse(p *models.Point) PointResponse {
	resp := PointResponse{
		Kind:          string(p.Kind),
		Rank:          p.Rank,
		City:          p.City,
		Lat:           p.Lat,
		Lon:           p.Lon,
		Price:         p.Price,
		Seats:         p.Seats,
		DepartureTime: p.DepartureTime,
	}
	if p.DepartureDate != nil {
		resp.DepartureDate = p.DepartureDate.Format("2006-01-02")
	}
	return resp
}
