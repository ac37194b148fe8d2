package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/viraforge/viraforge/internal/snapshot"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List and restore project snapshots",
}

func init() {
	backupsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List available snapshots, newest first",
		Run:   runBackupsList,
	}

	backupsRestoreCmd := &cobra.Command{
		Use:   "restore <backup-id>",
		Short: "Restore the project from a snapshot",
		Args:  cobra.ExactArgs(1),
		Run:   runBackupsRestore,
	}

	backupsCmd.AddCommand(backupsListCmd, backupsRestoreCmd)
	rootCmd.AddCommand(backupsCmd)
}

func backupManager() *snapshot.Manager {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return snapshot.NewManager(cfg.BackupsDir())
}

func runBackupsList(cmd *cobra.Command, args []string) {
	manifests, err := backupManager().List()
	if err != nil {
		log.Fatalf("Failed to list backups: %v", err)
	}
	if len(manifests) == 0 {
		fmt.Fprintln(os.Stderr, "No backups found.")
		return
	}

	for _, m := range manifests {
		fmt.Printf("%s  service=%s  paths=%d\n", m.BackupID, m.ServiceName, len(m.FilesBackedUp))
	}
}

func runBackupsRestore(cmd *cobra.Command, args []string) {
	if !backupManager().Restore(args[0]) {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Restore of %s failed\n", args[0])
		os.Exit(1)
	}
	_, _ = color.New(color.FgGreen).Fprintf(os.Stderr, "✓ Restored project from %s\n", args[0])
}
