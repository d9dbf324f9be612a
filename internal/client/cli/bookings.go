package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/eventbooking/internal/client/models"
)

func (a *App) Book(ctx context.Context, eventArg string) error {
	id, err := parseID(eventArg)
	if err != nil {
		return err
	}
	b, err := a.bookings.Create(ctx, id)
	if err != nil {
		return err
	}
	name := id.String()
	if b.EventDetails != nil {
		name = b.EventDetails.Name
	}
	a.printf("Booked %s (booking %s).\n", name, b.ID)
	return nil
}

// Bookings lists the current user's bookings, newest first.
func (a *App) Bookings(ctx context.Context, args []string) error {
	var q models.PageQuery
	if len(args) > 0 {
		var err error
		if q, err = parsePage(args[0]); err != nil {
			return err
		}
	}

	page, err := a.bookings.Mine(ctx, q)
	if err != nil {
		return err
	}
	if len(page.Content) == 0 {
		a.printf("You have no bookings.\n")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BOOKING\tEVENT\tDATE\tBOOKED AT")
	for _, b := range page.Content {
		event, date := "-", "-"
		if b.EventDetails != nil {
			event = b.EventDetails.Name
			date = b.EventDetails.EventDate.Local().Format(dateLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, event, date, b.BookingTime.Local().Format(dateLayout))
	}
	tw.Flush()
	printPageFooter(a.out, page.Number, page.TotalPages, page.TotalElements)
	return nil
}

func (a *App) Booking(ctx context.Context, idArg string) error {
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	b, err := a.bookings.Get(ctx, id)
	if err != nil {
		return err
	}
	a.printf("Booking %s\n  booked at: %s\n  user:      %s\n", b.ID, b.BookingTime.Local().Format(dateLayout), b.UserUsername)
	if b.EventDetails != nil {
		a.printf("\n")
		printEvent(a.out, b.EventDetails)
	}
	return nil
}

func (a *App) Cancel(ctx context.Context, idArg string) error {
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	msg, err := a.bookings.Cancel(ctx, id)
	if err != nil {
		return err
	}
	a.printf("%s\n", msg)
	return nil
}
