package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/the1323/cs166-project-the033-hbai013/internal/console"
)

func menuCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "menu [dbname] [port] [user]",
		Short: "Run the interactive menu",
		Args:  cobra.MaximumNArgs(3),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return applyPositional(flags, args)
		},
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			fmt.Fprintf(os.Stdout, "Connected to %s\n", a.cfg.Database.Redacted())
			menu := console.NewMenu(os.Stdin, os.Stdout, newServices(a).console(), a.validator, a.log)
			if err := menu.Run(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "Disconnecting from database...Done")
			return nil
		}),
	}
}
