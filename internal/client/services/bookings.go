package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/eventbooking/internal/client/client"
	"github.com/dmitrijs2005/eventbooking/internal/client/models"
	"github.com/google/uuid"
)

// BookingService manages the signed-in user's bookings. Every call needs a
// session.
type BookingService interface {
	Create(ctx context.Context, eventID uuid.UUID) (*models.Booking, error)
	Mine(ctx context.Context, q models.PageQuery) (*models.Page[models.Booking], error)
	Get(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Cancel(ctx context.Context, id uuid.UUID) (string, error)
}

type bookingService struct {
	api client.API
}

func NewBookingService(api client.API) BookingService {
	return &bookingService{api: api}
}

func (s *bookingService) Create(ctx context.Context, eventID uuid.UUID) (*models.Booking, error) {
	env, err := s.api.Request(ctx, http.MethodPost, "/bookings", models.CreateBookingRequest{EventID: eventID}, true)
	if err != nil {
		return nil, err
	}
	var b models.Booking
	if err := env.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode booking: %w", err)
	}
	return &b, nil
}

func (s *bookingService) Mine(ctx context.Context, q models.PageQuery) (*models.Page[models.Booking], error) {
	env, err := s.api.Request(ctx, http.MethodGet, "/bookings/my?"+q.Values(models.BookingSort).Encode(), nil, true)
	if err != nil {
		return nil, err
	}
	page := &models.Page[models.Booking]{}
	if err := decodeOrEmpty(env, page); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return page, nil
}

func (s *bookingService) Get(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	env, err := s.api.Request(ctx, http.MethodGet, "/bookings/"+id.String(), nil, true)
	if err != nil {
		return nil, err
	}
	var b models.Booking
	if err := env.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode booking: %w", err)
	}
	return &b, nil
}

// Cancel deletes the booking and returns the server's confirmation message.
func (s *bookingService) Cancel(ctx context.Context, id uuid.UUID) (string, error) {
	env, err := s.api.Request(ctx, http.MethodDelete, "/bookings/"+id.String(), nil, true)
	if err != nil {
		return "", err
	}
	return messageOf(env, "Booking cancelled"), nil
}

// decodeOrEmpty decodes env's data into v, leaving v untouched when there is none.
func decodeOrEmpty(env *client.Envelope, v any) error {
	if err := env.Decode(v); err != nil && !errors.Is(err, client.ErrNoData) {
		return err
	}
	return nil
}

// messageOf picks the server's message, which DELETE endpoints send either as
// "message" or as a plain string in "data".
func messageOf(env *client.Envelope, fallback string) string {
	if env.Message != "" {
		return env.Message
	}
	var s string
	if err := env.Decode(&s); err == nil && s != "" {
		return s
	}
	return fallback
}
