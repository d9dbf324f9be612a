package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventCategory string

const (
	CategoryConference        EventCategory = "CONFERENCE"
	CategoryWorkshop          EventCategory = "WORKSHOP"
	CategorySeminar           EventCategory = "SEMINAR"
	CategoryConcert           EventCategory = "CONCERT"
	CategoryNetworking        EventCategory = "NETWORKING"
	CategoryExhibition        EventCategory = "EXHIBITION"
	CategoryFestival          EventCategory = "FESTIVAL"
	CategorySports            EventCategory = "SPORTS"
	CategoryArtsAndCulture    EventCategory = "ARTS_AND_CULTURE"
	CategoryFoodAndDrink      EventCategory = "FOOD_AND_DRINK"
	CategoryCharity           EventCategory = "CHARITY"
	CategoryTechnology        EventCategory = "TECHNOLOGY"
	CategoryBusiness          EventCategory = "BUSINESS"
	CategoryEducation         EventCategory = "EDUCATION"
	CategoryHealthAndWellness EventCategory = "HEALTH_AND_WELLNESS"
	CategoryOther             EventCategory = "OTHER"
)

// CategoryAll is accepted by filters and means "every category".
const CategoryAll = "ALL"

var ErrUnknownCategory = errors.New("unknown event category")

var categories = []EventCategory{
	CategoryConference, CategoryWorkshop, CategorySeminar, CategoryConcert,
	CategoryNetworking, CategoryExhibition, CategoryFestival, CategorySports,
	CategoryArtsAndCulture, CategoryFoodAndDrink, CategoryCharity, CategoryTechnology,
	CategoryBusiness, CategoryEducation, CategoryHealthAndWellness, CategoryOther,
}

// Categories lists every known category in display order.
func Categories() []EventCategory {
	out := make([]EventCategory, len(categories))
	copy(out, categories)
	return out
}

func (c EventCategory) Valid() bool {
	for _, k := range categories {
		if k == c {
			return true
		}
	}
	return false
}

// NormalizeCategory turns user input such as "concerts", "Food and drink" or
// "ALL" into a category. The empty category (and nil error) means no filter.
func NormalizeCategory(s string) (EventCategory, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	if s == "" || s == CategoryAll {
		return "", nil
	}

	c := EventCategory(s)
	if c.Valid() {
		return c, nil
	}
	if singular := EventCategory(strings.TrimSuffix(s, "S")); singular != c && singular.Valid() {
		return singular, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

type Event struct {
	ID                   uuid.UUID     `json:"id"`
	Name                 string        `json:"name"`
	Description          string        `json:"description,omitempty"`
	Category             EventCategory `json:"category"`
	EventDate            time.Time     `json:"eventDate"`
	Venue                string        `json:"venue"`
	Price                float64       `json:"price"`
	ImageURL             string        `json:"imageUrl,omitempty"`
	MaxCapacity          *int          `json:"maxCapacity,omitempty"`
	CurrentBookingsCount int           `json:"currentBookingsCount"`
	IsCurrentUserBooked  bool          `json:"isCurrentUserBooked"`
	AdminCreatorUsername string        `json:"adminCreatorUsername,omitempty"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

// SeatsLeft reports the remaining capacity. limited is false for events
// without a maximum capacity.
func (e *Event) SeatsLeft() (left int, limited bool) {
	if e.MaxCapacity == nil {
		return 0, false
	}
	left = *e.MaxCapacity - e.CurrentBookingsCount
	if left < 0 {
		left = 0
	}
	return left, true
}

// EventInput is the payload of create and update calls. Nil or empty fields
// are omitted, which the backend treats as "unchanged" on update.
type EventInput struct {
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
	Category    EventCategory `json:"category,omitempty"`
	EventDate   *time.Time    `json:"eventDate,omitempty"`
	Venue       string        `json:"venue,omitempty"`
	Price       *float64      `json:"price,omitempty"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	MaxCapacity *int          `json:"maxCapacity,omitempty"`
}
