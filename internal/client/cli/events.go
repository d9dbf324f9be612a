package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/eventbooking/internal/client/models"
	"github.com/google/uuid"
)

const dateLayout = "Mon 02 Jan 2006 15:04"

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// parsePage turns a 1-based page number typed by the user into a query.
func parsePage(s string) (models.PageQuery, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return models.PageQuery{}, fmt.Errorf("invalid page %q", s)
	}
	return models.PageQuery{Page: n - 1}, nil
}

// Events lists upcoming events. Arguments are an optional category and an
// optional page number, in that order; a lone number is taken as the page.
func (a *App) Events(ctx context.Context, args []string) error {
	var (
		category string
		q        models.PageQuery
		err      error
	)
	switch {
	case len(args) >= 2:
		category = args[0]
		if q, err = parsePage(args[1]); err != nil {
			return err
		}
	case len(args) == 1:
		if _, convErr := strconv.Atoi(args[0]); convErr == nil {
			if q, err = parsePage(args[0]); err != nil {
				return err
			}
		} else {
			category = args[0]
		}
	}

	page, err := a.events.List(ctx, q, category)
	if err != nil {
		return err
	}
	if len(page.Content) == 0 {
		a.printf("No events found.\n")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tDATE\tVENUE\tPRICE\tSEATS")
	for i := range page.Content {
		e := &page.Content[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Name, e.Category, e.EventDate.Local().Format(dateLayout), e.Venue, formatPrice(e.Price), seats(e))
	}
	tw.Flush()
	printPageFooter(a.out, page.Number, page.TotalPages, page.TotalElements)
	return nil
}

// Event shows a single event.
func (a *App) Event(ctx context.Context, idArg string) error {
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	e, err := a.events.Get(ctx, id)
	if err != nil {
		return err
	}
	printEvent(a.out, e)
	return nil
}

func printEvent(w io.Writer, e *models.Event) {
	fmt.Fprintf(w, "%s\n", e.Name)
	fmt.Fprintf(w, "  id:       %s\n", e.ID)
	fmt.Fprintf(w, "  category: %s\n", e.Category)
	fmt.Fprintf(w, "  date:     %s\n", e.EventDate.Local().Format(dateLayout))
	fmt.Fprintf(w, "  venue:    %s\n", e.Venue)
	fmt.Fprintf(w, "  price:    %s\n", formatPrice(e.Price))
	fmt.Fprintf(w, "  seats:    %s\n", seats(e))
	if e.ImageURL != "" {
		fmt.Fprintf(w, "  image:    %s\n", e.ImageURL)
	}
	if e.IsCurrentUserBooked {
		fmt.Fprintln(w, "  You have booked this event.")
	}
	if e.Description != "" {
		fmt.Fprintf(w, "\n%s\n", e.Description)
	}
}

func formatPrice(p float64) string {
	if p == 0 {
		return "free"
	}
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func seats(e *models.Event) string {
	left, limited := e.SeatsLeft()
	if !limited {
		return "unlimited"
	}
	if left == 0 {
		return "sold out"
	}
	return fmt.Sprintf("%d of %d left", left, *e.MaxCapacity)
}

func printPageFooter(w io.Writer, number, totalPages int, total int64) {
	if totalPages < 1 {
		totalPages = 1
	}
	fmt.Fprintf(w, "Page %d of %d (%d total)\n", number+1, totalPages, total)
}
