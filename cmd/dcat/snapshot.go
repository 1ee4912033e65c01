package main

import (
	"fmt"

	"dcat-go/internal/app"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Copy the catalog to the vault and back",
}

var snapshotPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload a snapshot of the catalog now",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("PushSnapshot")
		if err != nil {
			return err
		}
		if err := a.PushSnapshot(); err != nil {
			a.Close()
			return err
		}
		id := a.Operation().ID
		// Close takes and uploads the snapshot.
		if err := a.Close(); err != nil {
			return err
		}
		fmt.Printf("Pushed snapshot version %d\n", id)
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Download the newest snapshot into the configured database path",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var passphrase string
		if app.NeedsPassphrase(cfg) {
			passphrase, err = readPassphrase("Passphrase: ")
			if err != nil {
				return err
			}
		}

		version, err := app.RestoreSnapshot(cfg, passphrase)
		if err != nil {
			return err
		}
		fmt.Printf("Restored snapshot version %d to %s\n", version, cfg.Database.Path)
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotPushCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
}
