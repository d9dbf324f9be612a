package cli

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/eventbooking/internal/client/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestEvents_Arguments(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCat  string
		wantPage int
		wantErr  bool
	}{
		{name: "none", args: nil},
		{name: "category only", args: []string{"concerts"}, wantCat: "concerts"},
		{name: "page only", args: []string{"3"}, wantPage: 2},
		{name: "category and page", args: []string{"sports", "2"}, wantCat: "sports", wantPage: 1},
		{name: "page zero", args: []string{"0"}, wantErr: true},
		{name: "bad page", args: []string{"concerts", "x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, "")
			err := app.Events(context.Background(), tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCat, app.events.lastCat)
			assert.Equal(t, tt.wantPage, app.events.lastQ.Page)
			assert.Contains(t, app.out.String(), "No events found.")
		})
	}
}

func TestEvents_Table(t *testing.T) {
	app := newTestApp(t, "")
	app.events.page = &models.Page[models.Event]{
		Content: []models.Event{
			{ID: uuid.New(), Name: "Jazz Night", Category: models.EventCategory("CONCERT"), Venue: "Hall", Price: 12.5,
				MaxCapacity: intPtr(100), CurrentBookingsCount: 40, EventDate: time.Now()},
			{ID: uuid.New(), Name: "Open Day", Category: models.EventCategory("OTHER"), Venue: "Campus"},
			{ID: uuid.New(), Name: "Tiny Gig", Venue: "Pub", MaxCapacity: intPtr(5), CurrentBookingsCount: 5},
		},
		TotalElements: 13,
		TotalPages:    2,
		Number:        0,
	}

	require.NoError(t, app.Events(context.Background(), nil))
	out := app.out.String()
	assert.Contains(t, out, "Jazz Night")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, "60 of 100 left")
	assert.Contains(t, out, "free")
	assert.Contains(t, out, "unlimited")
	assert.Contains(t, out, "sold out")
	assert.Contains(t, out, "Page 1 of 2 (13 total)")
}

func TestEvent_Show(t *testing.T) {
	app := newTestApp(t, "")
	id := uuid.New()
	app.events.event = &models.Event{
		ID:                  id,
		Name:                "Jazz Night",
		Description:         "Smooth tunes",
		ImageURL:            "https://cdn.example.com/jazz.png",
		IsCurrentUserBooked: true,
	}

	require.NoError(t, app.Event(context.Background(), id.String()))
	assert.Equal(t, id, app.events.lastID)
	out := app.out.String()
	assert.Contains(t, out, "Jazz Night")
	assert.Contains(t, out, "Smooth tunes")
	assert.Contains(t, out, "https://cdn.example.com/jazz.png")
	assert.Contains(t, out, "You have booked this event.")
}

func TestEvent_InvalidID(t *testing.T) {
	app := newTestApp(t, "")
	require.EqualError(t, app.Event(context.Background(), "nope"), `invalid id "nope"`)
}
