package dto

import "github.com/djakk/covoiturage-libre/internal/models"

type PointRequest struct {
	Kind              string   `json:"kind"`
	Rank              int      `json:"rank"`
	City              string   `json:"city"`
	Lat               *float64 `json:"lat"`
	Lon               *float64 `json:"lon"`
	Price             *int     `json:"price"`
	Seats             *int     `json:"seats"`
	DepartureDateText string   `json:"departure_date_text"`
	DepartureTime     string   `json:"departure_time"`
}

type TripRequest struct {
	Title          string         `json:"title"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	Description    string         `json:"description"`
	Comfort        string         `json:"comfort"`
	Smoking        *bool          `json:"smoking"`
	Age            *int           `json:"age"`
	TermsOfService bool           `json:"terms_of_service"`
	Points         []PointRequest `json:"points"`
}

func (r *TripRequest) ToModel() *models.Trip {
	trip := &models.Trip{
		Title:          r.Title,
		Name:           r.Name,
		Email:          r.Email,
		Phone:          r.Phone,
		Description:    r.Description,
		Comfort:        r.Comfort,
		Smoking:        r.Smoking,
		Age:            r.Age,
		TermsOfService: r.TermsOfService,
	}
	trip.Points = make([]models.Point, len(r.Points))
	for i, p := range r.Points {
		trip.Points[i] = models.Point{
			Kind:              models.PointKind(p.Kind),
			Rank:              p.Rank,
			City:              p.City,
			Lat:               p.Lat,
			Lon:               p.Lon,
			Price:             p.Price,
			Seats:             p.Seats,
			DepartureDateText: p.DepartureDateText,
			DepartureTime:     p.DepartureTime,
		}
	}
	return trip
}
