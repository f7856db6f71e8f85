package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/example/clinic-scheduler/internal/application"
)

func (c *cli) clientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage the patient directory",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Register a client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			var input application.ClientInput
			applyClientFlags(cmd.Flags(), &input)
			client, err := rt.clients.CreateClient(cmd.Context(), input)
			if err != nil {
				return err
			}
			return c.printClient(client)
		},
	}
	addClientFlags(addCmd.Flags())
	cmd.AddCommand(addCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List clients, optionally matching a name or id number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			query, _ := cmd.Flags().GetString("search")
			var clients []application.Client
			if strings.TrimSpace(query) == "" {
				clients, err = rt.clients.ListClients(cmd.Context())
			} else {
				clients, err = rt.clients.SearchClients(cmd.Context(), query)
			}
			if err != nil {
				return err
			}
			views := make([]clientView, len(clients))
			for i, client := range clients {
				views[i] = newClientView(client)
			}
			return c.print(views, func(w io.Writer) { writeClients(w, clients) })
		},
	}
	listCmd.Flags().String("search", "", "Name or id number substring")
	cmd.AddCommand(listCmd)

	showCmd := &cobra.Command{
		Use:   "show <client-id>",
		Short: "Show one client; with --by-id-number the argument is the national id number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			byNumber, _ := cmd.Flags().GetBool("by-id-number")
			var client application.Client
			if byNumber {
				client, err = rt.clients.GetClientByIDNumber(cmd.Context(), args[0])
			} else {
				client, err = rt.clients.GetClient(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return c.printClient(client)
		},
	}
	showCmd.Flags().Bool("by-id-number", false, "Look the client up by national id number")
	cmd.AddCommand(showCmd)

	updateCmd := &cobra.Command{
		Use:   "update <client-id>",
		Short: "Change the given fields of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			current, err := rt.clients.GetClient(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			input := application.ClientInput{
				IDNumber:       current.IDNumber,
				FullName:       current.FullName,
				Email:          current.Email,
				Phone:          current.Phone,
				EmergencyPhone: current.EmergencyPhone,
				Address:        current.Address,
				Age:            current.Age,
			}
			applyClientFlags(cmd.Flags(), &input)
			client, err := rt.clients.UpdateClient(cmd.Context(), application.UpdateClientParams{ClientID: args[0], Input: input})
			if err != nil {
				return err
			}
			return c.printClient(client)
		},
	}
	addClientFlags(updateCmd.Flags())
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <client-id>",
		Short: "Remove a client without appointments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			if err := rt.clients.DeleteClient(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.print(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted client %s\n", args[0])
			})
		},
	})

	return cmd
}

func addClientFlags(flags *pflag.FlagSet) {
	flags.String("id-number", "", "National id number")
	flags.String("name", "", "Full name")
	flags.String("email", "", "E-mail address")
	flags.String("phone", "", "Phone number")
	flags.String("emergency-phone", "", "Emergency contact phone")
	flags.String("address", "", "Postal address")
	flags.Int("age", 0, "Age in years")
}

// applyClientFlags copies only the flags the operator set, so update keeps
// the other fields. An explicitly empty optional flag clears the field.
func applyClientFlags(flags *pflag.FlagSet, input *application.ClientInput) {
	if flags.Changed("id-number") {
		input.IDNumber, _ = flags.GetString("id-number")
	}
	if flags.Changed("name") {
		input.FullName, _ = flags.GetString("name")
	}
	optional := map[string]**string{
		"email":           &input.Email,
		"phone":           &input.Phone,
		"emergency-phone": &input.EmergencyPhone,
		"address":         &input.Address,
	}
	for name, dst := range optional {
		if !flags.Changed(name) {
			continue
		}
		value, _ := flags.GetString(name)
		*dst = &value
	}
	if flags.Changed("age") {
		age, _ := flags.GetInt("age")
		input.Age = &age
	}
}

func (c *cli) printClient(client application.Client) error {
	return c.print(newClientView(client), func(w io.Writer) { writeClients(w, []application.Client{client}) })
}
