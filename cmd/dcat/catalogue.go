package main

import (
	"fmt"

	"dcat-go/internal/app"

	"github.com/spf13/cobra"
)

var catalogueCmd = &cobra.Command{
	Use:     "catalogue",
	Aliases: []string{"cat"},
	Short:   "Manage catalogues (named groups of disks)",
}

var catalogueCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a catalogue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("CreateCatalogue", func(a *app.DCatApp) error {
			c, err := a.CreateCatalogue(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Created catalogue #%d %s\n", c.ID, c.Name)
			return nil
		})
	},
}

var catalogueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogues",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("ListCatalogues", func(a *app.DCatApp) error {
			cats, err := a.ListCatalogues()
			if err != nil {
				return err
			}
			if len(cats) == 0 {
				fmt.Println("No catalogues.")
				return nil
			}
			for _, c := range cats {
				fmt.Printf("#%-5d %s\n", c.ID, c.Name)
			}
			return nil
		})
	},
}

var catalogueRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a catalogue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "catalogue")
		if err != nil {
			return err
		}
		return withApp("RenameCatalogue", func(a *app.DCatApp) error {
			return a.RenameCatalogue(id, args[1])
		})
	},
}

var catalogueDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a catalogue and every disk in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "catalogue")
		if err != nil {
			return err
		}
		return withApp("DeleteCatalogue", func(a *app.DCatApp) error {
			if err := a.DeleteCatalogue(id); err != nil {
				return err
			}
			fmt.Printf("Deleted catalogue #%d\n", id)
			return nil
		})
	},
}

func init() {
	catalogueCmd.AddCommand(catalogueCreateCmd)
	catalogueCmd.AddCommand(catalogueListCmd)
	catalogueCmd.AddCommand(catalogueRenameCmd)
	catalogueCmd.AddCommand(catalogueDeleteCmd)
}
