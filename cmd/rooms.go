package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"roombook/internal/dashboard"
	"roombook/internal/model"
	"roombook/internal/validate"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List and manage meeting rooms",
}

var roomForm validate.RoomForm

func renderRooms(cmd *cobra.Command, rooms []model.Room) error {
	return render(cmd, rooms, func(w io.Writer) {
		if len(rooms) == 0 {
			fmt.Fprintln(w, "No meeting rooms found")
			return
		}
		fmt.Fprintln(w, "ID\tNAME\tCAPACITY\tLOCATION\tDESCRIPTION")
		for _, r := range rooms {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.ID, r.Name, r.Capacity, orDash(r.Location), orDash(r.Description))
		}
	})
}

var listRoomsCmd = &cobra.Command{
	Use:   "list",
	Short: "List meeting rooms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		rooms, err := app.dashboard.Rooms(cmd.Context())
		if err != nil {
			return err
		}
		return renderRooms(cmd, rooms)
	},
}

var createRoomCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a meeting room (administrators)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		rooms, err := app.dashboard.SaveRoom(cmd.Context(), "", roomForm)
		if err != nil {
			return err
		}
		return renderRooms(cmd, rooms)
	},
}

var updateRoomCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a meeting room (administrators)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		rooms, err := app.dashboard.SaveRoom(cmd.Context(), args[0], roomForm)
		if err != nil {
			return err
		}
		return renderRooms(cmd, rooms)
	},
}

var deleteRoomCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a meeting room (administrators)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		rooms, err := app.dashboard.DeleteRoom(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return renderRooms(cmd, rooms)
	},
}

var importRoomsCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create rooms from a CSV room list (administrators)",
	Long: `Create rooms from a CSV, TSV or semicolon separated room list with a
header row naming the name, capacity, location and description columns.
Use - to read the list from standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		app, err := signedIn(cmd.Context())
		if err != nil {
			return err
		}
		report, err := app.dashboard.ImportRooms(cmd.Context(), in)
		if err != nil {
			return err
		}
		return renderImport(cmd, report)
	},
}

func renderImport(cmd *cobra.Command, report dashboard.ImportReport) error {
	return render(cmd, report, func(w io.Writer) {
		fmt.Fprintln(w, "LINE\tNAME\tRESULT")
		for _, r := range report.Created {
			fmt.Fprintf(w, "-\t%s\tcreated (%s)\n", r.Name, r.ID)
		}
		for _, f := range report.Failed {
			fmt.Fprintf(w, "%s\t%s\t%s\n", strconv.Itoa(f.Line), orDash(f.Name), f.Message)
		}
		fmt.Fprintf(w, "\nCreated: %d, failed: %d\n", len(report.Created), len(report.Failed))
	})
}

func init() {
	rootCmd.AddCommand(roomsCmd)
	roomsCmd.AddCommand(listRoomsCmd, createRoomCmd, updateRoomCmd, deleteRoomCmd, importRoomsCmd)

	for _, c := range []*cobra.Command{createRoomCmd, updateRoomCmd} {
		c.Flags().StringVar(&roomForm.Name, "name", "", "room name")
		c.Flags().StringVar(&roomForm.Capacity, "capacity", "", "number of seats")
		c.Flags().StringVar(&roomForm.Location, "location", "", "where the room is")
		c.Flags().StringVar(&roomForm.Description, "description", "", "free text")
	}
}
