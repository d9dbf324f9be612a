package models

import (
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	ID           uuid.UUID `json:"id"`
	EventDetails *Event    `json:"eventDetails,omitempty"`
	UserID       uuid.UUID `json:"userId"`
	UserUsername string    `json:"userUsername"`
	BookingTime  time.Time `json:"bookingTime"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateBookingRequest struct {
	EventID uuid.UUID `json:"eventId"`
}
