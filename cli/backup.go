package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gunalchandran/grocery-backend/uploads"
)

// NewBackupUploadsCommand creates the backup-uploads command.
func NewBackupUploadsCommand(opts *RootOptions) *cobra.Command {
	var backupDir string

	cmd := &cobra.Command{
		Use:   "backup-uploads",
		Short: "Copy the uploads directory once and prune old backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if backupDir == "" {
				backupDir = opts.Config.Uploads.BackupDir
			}
			if backupDir == "" {
				return errors.New("no backup directory: set uploads.backup_dir or --dir")
			}

			dest, err := uploads.Backup(opts.Config.Uploads.Dir, backupDir, opts.Config.BackupRetention(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploads backed up to %s\n", dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&backupDir, "dir", "", "backup directory (defaults to uploads.backup_dir)")
	return cmd
}
