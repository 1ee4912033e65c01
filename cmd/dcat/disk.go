package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"dcat-go/internal/app"
	"dcat-go/internal/catalog"
	"dcat-go/internal/database/sqlc"

	"github.com/spf13/cobra"
)

var diskCmd = &cobra.Command{
	Use:   "disk",
	Short: "Catalogue and manage disks",
}

// catalogueFlag reads --catalogue; 0 or unset means the root level.
func catalogueFlag(cmd *cobra.Command) sql.NullInt64 {
	id, _ := cmd.Flags().GetInt64("catalogue")
	return sql.NullInt64{Int64: id, Valid: id > 0}
}

// scanContext is cancelled by Ctrl-C or SIGTERM, which rolls back the
// running scan.
func scanContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

var diskAddCmd = &cobra.Command{
	Use:   "add PATH",
	Short: "Catalogue a directory tree as a new disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")

		ctx, stop := scanContext(cmd)
		defer stop()

		return withApp("AddDisk", func(a *app.DCatApp) error {
			res, err := a.AddDisk(ctx, args[0], name, catalogueFlag(cmd), &progressPrinter{w: os.Stderr})
			return reportScan(res, err)
		})
	},
}

var diskUpdateCmd = &cobra.Command{
	Use:   "update ID [PATH]",
	Short: "Rescan a disk, replacing its contents",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "disk")
		if err != nil {
			return err
		}
		path := ""
		if len(args) > 1 {
			path = args[1]
		}

		ctx, stop := scanContext(cmd)
		defer stop()

		return withApp("UpdateDisk", func(a *app.DCatApp) error {
			res, err := a.UpdateDisk(ctx, id, path, &progressPrinter{w: os.Stderr})
			return reportScan(res, err)
		})
	},
}

func reportScan(res *catalog.Result, err error) error {
	return writeScanReport(os.Stdout, res, err)
}

// writeScanReport prints the outcome of a scan. Unreadable directories are
// listed for failed runs too.
func writeScanReport(w io.Writer, res *catalog.Result, err error) error {
	switch {
	case catalog.Cancelled(err):
		fmt.Fprintln(w, "Cancelled; nothing was recorded.")
	case err == nil && res.Disk != nil:
		fmt.Fprintf(w, "Catalogued %s objects into disk #%d (%s)\n", formatCount(res.Objects), res.DiskID, res.Disk.Name)
	case err == nil:
		fmt.Fprintf(w, "Catalogued %s objects into disk #%d\n", formatCount(res.Objects), res.DiskID)
	}
	if res != nil && len(res.AccessDenied) > 0 {
		fmt.Fprintf(w, "%d directories could not be read:\n", len(res.AccessDenied))
		for _, p := range res.AccessDenied {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
	return err
}

var diskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List disks",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		return withApp("ListDisks", func(a *app.DCatApp) error {
			var disks []*sqlc.Disk
			var err error
			if all {
				disks, err = a.ListAllDisks()
			} else {
				disks, err = a.ListDisks(catalogueFlag(cmd))
			}
			if err != nil {
				return err
			}
			printDisks(disks)
			return nil
		})
	},
}

var diskRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "disk")
		if err != nil {
			return err
		}
		return withApp("RenameDisk", func(a *app.DCatApp) error {
			return a.RenameDisk(id, args[1])
		})
	},
}

var diskMoveCmd = &cobra.Command{
	Use:   "move ID [CATALOGUE_ID]",
	Short: "Move a disk into a catalogue, or to the root level",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "disk")
		if err != nil {
			return err
		}
		var target sql.NullInt64
		if len(args) > 1 {
			cid, err := parseID(args[1], "catalogue")
			if err != nil {
				return err
			}
			target = sql.NullInt64{Int64: cid, Valid: true}
		}
		return withApp("MoveDisk", func(a *app.DCatApp) error {
			return a.MoveDisk(id, target)
		})
	},
}

var diskCommandsCmd = &cobra.Command{
	Use:   "commands ID",
	Short: "Show or set the commands that mount and unmount a disk",
	Long: "Show or set the commands that mount and unmount a disk's medium.\n" +
		"dcat only stores the commands; it never runs them.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "disk")
		if err != nil {
			return err
		}
		setMount := cmd.Flags().Changed("mount")
		setUnmount := cmd.Flags().Changed("unmount")
		operation := "ShowDiskCommands"
		if setMount || setUnmount {
			operation = "SetDiskCommands"
		}

		return withApp(operation, func(a *app.DCatApp) error {
			d, err := a.GetDisk(id)
			if err != nil {
				return err
			}
			if setMount || setUnmount {
				mount, unmount := d.MountCommand, d.UnmountCommand
				if setMount {
					mount, _ = cmd.Flags().GetString("mount")
				}
				if setUnmount {
					unmount, _ = cmd.Flags().GetString("unmount")
				}
				if err := a.SetDiskCommands(id, mount, unmount); err != nil {
					return err
				}
				if d, err = a.GetDisk(id); err != nil {
					return err
				}
			}
			fmt.Printf("Mount:   %s\n", d.MountCommand)
			fmt.Printf("Unmount: %s\n", d.UnmountCommand)
			return nil
		})
	},
}

var diskDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a disk and everything catalogued on it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "disk")
		if err != nil {
			return err
		}
		return withApp("DeleteDisk", func(a *app.DCatApp) error {
			if err := a.DeleteDisk(id); err != nil {
				return err
			}
			fmt.Printf("Deleted disk #%d\n", id)
			return nil
		})
	},
}

func init() {
	diskCmd.AddCommand(diskAddCmd)
	diskAddCmd.Flags().String("name", "", "Disk name (default: last element of PATH)")
	diskAddCmd.Flags().Int64("catalogue", 0, "Catalogue to put the disk in")

	diskCmd.AddCommand(diskUpdateCmd)

	diskCmd.AddCommand(diskListCmd)
	diskListCmd.Flags().Int64("catalogue", 0, "List the disks of this catalogue instead of the root level")
	diskListCmd.Flags().BoolP("all", "a", false, "List every disk")

	diskCmd.AddCommand(diskRenameCmd)
	diskCmd.AddCommand(diskMoveCmd)

	diskCmd.AddCommand(diskCommandsCmd)
	diskCommandsCmd.Flags().String("mount", "", "Command that mounts the disk")
	diskCommandsCmd.Flags().String("unmount", "", "Command that unmounts the disk")

	diskCmd.AddCommand(diskDeleteCmd)
}
