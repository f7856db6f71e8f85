package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/example/clinic-scheduler/internal/application"
)

func (c *cli) roomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Manage consultation rooms",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List rooms by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			rooms, err := rt.rooms.ListRooms(cmd.Context())
			if err != nil {
				return err
			}
			views := make([]roomView, len(rooms))
			for i, room := range rooms {
				views[i] = newRoomView(room)
			}
			return c.print(views, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME")
				for _, room := range views {
					fmt.Fprintf(w, "%s\t%s\n", room.ID, room.Name)
				}
			})
		},
	})

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Create or rename rooms to match the YAML room catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("catalog")
			if path == "" {
				path = rt.cfg.RoomCatalog
			}
			if path == "" {
				return fmt.Errorf("--catalog is required when CLINIC_ROOM_CATALOG is not set")
			}
			result, err := c.syncCatalog(cmd.Context(), path)
			if err != nil {
				return err
			}
			return c.print(syncView(result), func(w io.Writer) {
				fmt.Fprintf(w, "created %d, renamed %d, unchanged %d\n", len(result.Created), len(result.Renamed), len(result.Unchanged))
			})
		},
	}
	syncCmd.Flags().String("catalog", "", "Path to the room catalog (defaults to CLINIC_ROOM_CATALOG)")
	cmd.AddCommand(syncCmd)

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a room outside the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			id, _ := cmd.Flags().GetString("id")
			room, err := rt.rooms.CreateRoom(cmd.Context(), application.CreateRoomParams{ID: id, Input: application.RoomInput{Name: args[0]}})
			if err != nil {
				return err
			}
			return c.printRoom(room)
		},
	}
	addCmd.Flags().String("id", "", "Room id (default a new UUID)")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <room-id> <name>",
		Short: "Rename a room",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			room, err := rt.rooms.UpdateRoom(cmd.Context(), application.UpdateRoomParams{RoomID: args[0], Input: application.RoomInput{Name: args[1]}})
			if err != nil {
				return err
			}
			return c.printRoom(room)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <room-id>",
		Short: "Delete a room that holds no appointments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			if err := rt.rooms.DeleteRoom(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.print(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted room %s\n", args[0])
			})
		},
	})

	return cmd
}

func (c *cli) printRoom(room application.Room) error {
	view := newRoomView(room)
	return c.print(view, func(w io.Writer) {
		fmt.Fprintf(w, "%s\t%s\n", view.ID, view.Name)
	})
}
