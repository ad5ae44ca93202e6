package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show room and booking counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		ov, err := app.dashboard.Overview(cmd.Context())
		if err != nil {
			return err
		}
		admin := app.session.User().IsAdmin()
		return render(cmd, ov, func(w io.Writer) {
			fmt.Fprintf(w, "Total rooms\t%d\n", ov.TotalRooms)
			if admin {
				fmt.Fprintf(w, "Total bookings\t%d\n", ov.TotalBookings)
			}
			fmt.Fprintf(w, "My bookings\t%d\n", ov.MyBookings)
			fmt.Fprintf(w, "Upcoming bookings\t%d\n", ov.UpcomingBookings)
		})
	},
}

func init() {
	rootCmd.AddCommand(overviewCmd)
}
