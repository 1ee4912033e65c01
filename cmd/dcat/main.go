package main

import (
	"fmt"
	"os"
	"strconv"

	"dcat-go/internal/app"
	"dcat-go/internal/config"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file named by the application defaults.
func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a DCatApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "AddDisk", "Search").
func newApp(operation string) (*app.DCatApp, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewDCatApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// withApp runs fn against a fresh app and reports the first error of fn
// and Close.
func withApp(operation string, fn func(a *app.DCatApp) error) error {
	a, err := newApp(operation)
	if err != nil {
		return err
	}
	err = fn(a)
	if cerr := a.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

var rootCmd = &cobra.Command{
	Use:          "dcat",
	Short:        "Disk catalog: record directory trees and search them offline",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration and encryption keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])

		var passphrase string
		if app.NeedsPassphrase(cfg) {
			passphrase, err = readNewPassphrase()
			if err != nil {
				return err
			}
		}
		if err := app.SetupEncryption(cfg, passphrase); err != nil {
			return err
		}
		fmt.Printf("Snapshot keys: %s\n", cfg.Encryption.PublicKeyPath)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:    %s\n", cfg.HostID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s %s\n", cfg.Database.Type, cfg.Database.Path)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		fmt.Printf("Progress:   every %d objects\n", cfg.ProgressInterval())
		if len(cfg.Vaults) == 0 {
			fmt.Println("Vault:      none (snapshots disabled)")
		}
		for i, v := range cfg.Vaults {
			marker := ""
			if i == 0 {
				marker = " (active)"
			}
			fmt.Printf("Vault:      %s %s%s\n", v.Type, v.Name, marker)
		}
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the catalog database",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new catalog database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := app.InitDatabase(cfg); err != nil {
			return err
		}
		fmt.Printf("Catalog database created at %s\n", cfg.Database.Path)
		return nil
	},
}

var dbInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("Info", func(a *app.DCatApp) error {
			info, err := a.Info()
			if err != nil {
				return err
			}
			printInfo(info)
			return nil
		})
	},
}

var dbCompactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Rebuild the database file to reclaim space",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("Compact", func(a *app.DCatApp) error {
			before, err := a.Info()
			if err != nil {
				return err
			}
			if err := a.Compact(); err != nil {
				return err
			}
			after, err := a.Info()
			if err != nil {
				return err
			}
			fmt.Printf("Compacted %s: %s -> %s\n", after.Path,
				formatSize(before.Stats.DatabaseBytes), formatSize(after.Stats.DatabaseBytes))
			return nil
		})
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View catalog operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp("GetHistory", func(a *app.DCatApp) error {
			ops, err := a.GetHistory(limit)
			if err != nil {
				return err
			}
			printHistory(ops)
			return nil
		})
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// db subcommands
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbInfoCmd)
	dbCmd.AddCommand(dbCompactCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(catalogueCmd)
	rootCmd.AddCommand(diskCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntP("limit", "n", 0, "Maximum number of hits (default 500)")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(snapshotCmd)
}
