package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/eventbooking/internal/client/client"
	"github.com/dmitrijs2005/eventbooking/internal/client/models"
	"github.com/google/uuid"
)

// ImageField is the multipart field the backend reads event images from.
const ImageField = "imageFile"

// EventService browses events publicly and manages them for admins.
type EventService interface {
	List(ctx context.Context, q models.PageQuery, category string) (*models.Page[models.Event], error)
	Get(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Create(ctx context.Context, in models.EventInput) (*models.Event, error)
	Update(ctx context.Context, id uuid.UUID, in models.EventInput) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) (string, error)
	UploadImage(ctx context.Context, id uuid.UUID, filename string, r io.Reader) (*models.Event, error)
	DeleteImage(ctx context.Context, id uuid.UUID) error
}

type eventService struct {
	api client.API
}

func NewEventService(api client.API) EventService {
	return &eventService{api: api}
}

// List returns one page of events, optionally filtered by category. The
// category goes through models.NormalizeCategory; "ALL" or "" lists all.
func (s *eventService) List(ctx context.Context, q models.PageQuery, category string) (*models.Page[models.Event], error) {
	c, err := models.NormalizeCategory(category)
	if err != nil {
		return nil, err
	}

	endpoint := "/events"
	if c != "" {
		endpoint = "/events/category/" + url.PathEscape(string(c))
	}
	endpoint += "?" + q.Values(models.EventSort).Encode()

	env, err := s.api.Request(ctx, http.MethodGet, endpoint, nil, false)
	if err != nil {
		return nil, err
	}
	page := &models.Page[models.Event]{}
	if err := decodeOrEmpty(env, page); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return page, nil
}

func (s *eventService) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	env, err := s.api.Request(ctx, http.MethodGet, eventPath(id), nil, false)
	if err != nil {
		return nil, err
	}
	return decodeEvent(env)
}

func (s *eventService) Create(ctx context.Context, in models.EventInput) (*models.Event, error) {
	env, err := s.api.Request(ctx, http.MethodPost, "/events", in, true)
	if err != nil {
		return nil, err
	}
	return decodeEvent(env)
}

func (s *eventService) Update(ctx context.Context, id uuid.UUID, in models.EventInput) (*models.Event, error) {
	env, err := s.api.Request(ctx, http.MethodPut, eventPath(id), in, true)
	if err != nil {
		return nil, err
	}
	return decodeEvent(env)
}

// Delete removes the event and returns the server's confirmation message.
func (s *eventService) Delete(ctx context.Context, id uuid.UUID) (string, error) {
	env, err := s.api.Request(ctx, http.MethodDelete, eventPath(id), nil, true)
	if err != nil {
		return "", err
	}
	return messageOf(env, "Event deleted"), nil
}

// UploadImage attaches an image to the event. The updated event is returned
// when the server sends it back, nil otherwise.
func (s *eventService) UploadImage(ctx context.Context, id uuid.UUID, filename string, r io.Reader) (*models.Event, error) {
	env, err := s.api.Upload(ctx, eventPath(id)+"/image", ImageField, filename, r, true)
	if err != nil {
		return nil, err
	}
	e, err := decodeEvent(env)
	if errors.Is(err, client.ErrNoData) {
		return nil, nil
	}
	return e, err
}

func (s *eventService) DeleteImage(ctx context.Context, id uuid.UUID) error {
	_, err := s.api.Request(ctx, http.MethodDelete, eventPath(id)+"/image", nil, true)
	return err
}

func eventPath(id uuid.UUID) string {
	return "/events/" + id.String()
}

func decodeEvent(env *client.Envelope) (*models.Event, error) {
	var e models.Event
	if err := env.Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}
