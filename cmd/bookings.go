package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"roombook/internal/booking"
	"roombook/internal/dashboard"
	"roombook/internal/validate"
)

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "List, create and cancel bookings",
}

var (
	statusFilter string
	bookingForm  validate.BookingForm
)

func renderListing(cmd *cobra.Command, l dashboard.Listing, withOwner bool) error {
	return render(cmd, l, func(w io.Writer) {
		if len(l.Entries) == 0 {
			fmt.Fprintln(w, "No bookings found")
			return
		}
		if withOwner {
			fmt.Fprintln(w, "ID\tTITLE\tROOM\tOWNER\tSTART\tEND\tSTATUS")
		} else {
			fmt.Fprintln(w, "ID\tTITLE\tROOM\tSTART\tEND\tSTATUS")
		}
		for _, e := range l.Entries {
			if withOwner {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Title, e.RoomName(), e.OwnerEmail(),
					localTime(e.StartTime), localTime(e.EndTime), e.Display.Label)
			} else {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Title, e.RoomName(),
					localTime(e.StartTime), localTime(e.EndTime), e.Display.Label)
			}
		}

		fmt.Fprintln(w)
		for _, k := range []booking.Kind{booking.Ongoing, booking.Upcoming, booking.Completed, booking.Cancelled} {
			if n, ok := l.Counts[k]; ok {
				fmt.Fprintf(w, "%s:\t%d\n", k.Label(), n)
			}
		}
	})
}

var myBookingsCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your bookings, most urgent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := booking.ParseFilter(statusFilter)
		if err != nil {
			return err
		}
		app, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		listing, err := app.dashboard.MyBookings(cmd.Context(), filter)
		if err != nil {
			return err
		}
		return renderListing(cmd, listing, false)
	},
}

var allBookingsCmd = &cobra.Command{
	Use:   "all",
	Short: "List every booking in the organisation (administrators)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := booking.ParseFilter(statusFilter)
		if err != nil {
			return err
		}
		app, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		listing, err := app.dashboard.AllBookings(cmd.Context(), filter)
		if err != nil {
			return err
		}
		return renderListing(cmd, listing, true)
	},
}

var createBookingCmd = &cobra.Command{
	Use:   "create",
	Short: "Book a meeting room",
	Long: `Book a meeting room for one day. Date is YYYY-MM-DD, start and end are
HH:MM in local time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		created, err := app.dashboard.CreateBooking(cmd.Context(), bookingForm)
		if err != nil {
			return err
		}
		return render(cmd, created, func(w io.Writer) {
			fmt.Fprintf(w, "Booked %s in %s, %s to %s (%s)\n", created.Title, created.RoomName(),
				localTime(created.StartTime), localTime(created.EndTime), created.ID)
		})
	},
}

var cancelBookingCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel one of your upcoming bookings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		if err := app.dashboard.CancelBooking(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Booking cancelled.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bookingsCmd)
	bookingsCmd.AddCommand(myBookingsCmd, allBookingsCmd, createBookingCmd, cancelBookingCmd)

	for _, c := range []*cobra.Command{myBookingsCmd, allBookingsCmd} {
		c.Flags().StringVar(&statusFilter, "status", "all", "all, upcoming, ongoing or completed")
	}

	f := createBookingCmd.Flags()
	f.StringVar(&bookingForm.RoomID, "room", "", "meeting room id")
	f.StringVar(&bookingForm.Title, "title", "", "meeting title")
	f.StringVar(&bookingForm.Description, "description", "", "free text")
	f.StringVar(&bookingForm.Date, "date", "", "day of the meeting, YYYY-MM-DD")
	f.StringVar(&bookingForm.StartTime, "start", "", "start time, HH:MM")
	f.StringVar(&bookingForm.EndTime, "end", "", "end time, HH:MM")
}
