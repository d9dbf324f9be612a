package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/eventbooking/internal/client/models"
)

var getMultiline = GetMultiline

var errCancelled = errors.New("cancelled")

// dateLayouts are tried in order when parsing an event date typed by an admin.
// Layouts without a zone are read in local time.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD HH:MM", s)
}

// readEventInput prompts for every event field. On update an empty answer
// leaves the field unchanged; on create name, category, date and venue are
// required.
func (a *App) readEventInput(update bool) (models.EventInput, error) {
	var in models.EventInput
	hint := ""
	if update {
		hint = " (empty to keep)"
	}
	ask := func(label string) (string, error) {
		if update {
			return a.prompt(label + hint)
		}
		return a.promptRequired(label)
	}

	var err error
	if in.Name, err = ask("Name"); err != nil {
		return in, err
	}
	if in.Description, err = getMultiline(a.reader, "Description"+hint, a.out); err != nil {
		return in, err
	}

	cat, err := ask("Category (" + categoryList() + ")")
	if err != nil {
		return in, err
	}
	if cat != "" {
		if in.Category, err = models.NormalizeCategory(cat); err != nil {
			return in, err
		}
		if in.Category == "" {
			return in, fmt.Errorf("%w: %q", models.ErrUnknownCategory, cat)
		}
	}

	date, err := ask("Date (YYYY-MM-DD HH:MM)")
	if err != nil {
		return in, err
	}
	if date != "" {
		t, err := parseDate(date)
		if err != nil {
			return in, err
		}
		in.EventDate = &t
	}

	if in.Venue, err = ask("Venue"); err != nil {
		return in, err
	}

	freeHint, unlimitedHint := "free", "unlimited"
	if update {
		freeHint, unlimitedHint = "unchanged", "unchanged"
	}

	price, err := a.prompt("Price (empty for " + freeHint + ")")
	if err != nil {
		return in, err
	}
	if price != "" {
		p, err := strconv.ParseFloat(price, 64)
		if err != nil || p < 0 {
			return in, fmt.Errorf("invalid price %q", price)
		}
		in.Price = &p
	} else if !update {
		zero := 0.0
		in.Price = &zero
	}

	capacity, err := a.prompt("Maximum capacity (empty for " + unlimitedHint + ")")
	if err != nil {
		return in, err
	}
	if capacity != "" {
		n, err := strconv.Atoi(capacity)
		if err != nil || n < 1 {
			return in, fmt.Errorf("invalid capacity %q", capacity)
		}
		in.MaxCapacity = &n
	}

	if in.ImageURL, err = a.prompt("Image URL (optional)"); err != nil {
		return in, err
	}
	return in, nil
}

func categoryList() string {
	cats := models.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func (a *App) confirm(question string) error {
	answer, err := a.prompt(question + " [y/N]")
	if err != nil {
		return err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return nil
	}
	return errCancelled
}

func (a *App) CreateEvent(ctx context.Context) error {
	in, err := a.readEventInput(false)
	if err != nil {
		return err
	}
	e, err := a.events.Create(ctx, in)
	if err != nil {
		return err
	}
	a.printf("Event created.\n")
	printEvent(a.out, e)
	return nil
}

func (a *App) UpdateEvent(ctx context.Context, idArg string) error {
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	in, err := a.readEventInput(true)
	if err != nil {
		return err
	}
	e, err := a.events.Update(ctx, id, in)
	if err != nil {
		return err
	}
	a.printf("Event updated.\n")
	printEvent(a.out, e)
	return nil
}

func (a *App) DeleteEvent(ctx context.Context, idArg string) error {
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	if err := a.confirm("Delete event " + id.String() + "?"); err != nil {
		return err
	}
	msg, err := a.events.Delete(ctx, id)
	if err != nil {
		return err
	}
	a.printf("%s\n", msg)
	return nil
}

// UploadImage sends the file at path as the event's image.
func (a *App) UploadImage(ctx context.Context, idArg, path string) error {
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	e, err := a.events.UploadImage(ctx, id, filepath.Base(path), f)
	if err != nil {
		return err
	}
	if e != nil && e.ImageURL != "" {
		a.printf("Image uploaded: %s\n", e.ImageURL)
		return nil
	}
	a.printf("Image uploaded.\n")
	return nil
}

func (a *App) DeleteImage(ctx context.Context, idArg string) error {
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	if err := a.events.DeleteImage(ctx, id); err != nil {
		return err
	}
	a.printf("Image removed.\n")
	return nil
}
