package model

import "time"

// Service is a bookable treatment from the catalog.
type Service struct {
	ID              string
	Name            string
	DurationMinutes int
	PriceCents      int64
	Active          bool
}

func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}
