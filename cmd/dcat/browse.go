package main

import (
	"database/sql"
	"fmt"
	"strings"

	"dcat-go/internal/app"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls DISK_ID [DIR_ID]",
	Short: "List a catalogued directory",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		diskID, err := parseID(args[0], "disk")
		if err != nil {
			return err
		}
		var dirID sql.NullInt64
		if len(args) > 1 {
			id, err := parseID(args[1], "directory")
			if err != nil {
				return err
			}
			dirID = sql.NullInt64{Int64: id, Valid: true}
		}

		return withApp("ListDirectory", func(a *app.DCatApp) error {
			b, err := a.ListDirectory(diskID, dirID)
			if err != nil {
				return err
			}
			printBrowse(b)
			return nil
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search TEXT",
	Short: "Find directories and files whose name contains TEXT",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		text := strings.Join(args, " ")

		return withApp("Search", func(a *app.DCatApp) error {
			hits, err := a.Search(text, limit)
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Println("No matches.")
				return nil
			}
			printHits(hits)
			return nil
		})
	},
}
