package domain

import (
	"time"
)

// Wholesaler represents a store in the directory. Coordinates are kept as
// the strings they were submitted as.
type Wholesaler struct {
	ID            int64     `db:"id" json:"id"`
	StoreName     string    `db:"store_name" json:"store_name"`
	CurrentStatus string    `db:"current_status" json:"current_status"`
	OpenTime      string    `db:"open_time" json:"open_time"`
	CloseTime     string    `db:"close_time" json:"close_time"`
	Distance      string    `db:"distance" json:"distance"`
	Duration      string    `db:"duration" json:"duration"`
	Email         string    `db:"email" json:"email"`
	Location      *string   `db:"location" json:"location"`
	Longitude     string    `db:"longitude" json:"longitude"`
	Latitude      string    `db:"latitude" json:"latitude"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Coordinates returns the raw latitude and longitude.
func (w Wholesaler) Coordinates() (string, string) {
	return w.Latitude, w.Longitude
}

// NearbyWholesaler is a wholesaler annotated with its distance from the caller.
type NearbyWholesaler struct {
	Wholesaler
	DistanceInKm float64 `json:"distanceInKm"`
}

// WholesalerUpdate carries the editable columns. Nil fields are left untouched.
type WholesalerUpdate struct {
	StoreName     *string `json:"store_name"`
	CurrentStatus *string `json:"current_status"`
	OpenTime      *string `json:"open_time"`
	CloseTime     *string `json:"close_time"`
	Distance      *string `json:"distance"`
	Duration      *string `json:"duration"`
	Email         *string `json:"email"`
	Location      *string `json:"location"`
	Longitude     *string `json:"longitude"`
	Latitude      *string `json:"latitude"`
}

func (u WholesalerUpdate) Empty() bool {
	return u.StoreName == nil && u.CurrentStatus == nil && u.OpenTime == nil &&
		u.CloseTime == nil && u.Distance == nil && u.Duration == nil &&
		u.Email == nil && u.Location == nil && u.Longitude == nil && u.Latitude == nil
}
