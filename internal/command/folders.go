package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"zephyr-upload/internal/domain"
)

func newFoldersCommand() *cobra.Command {
	foldersCmd := &cobra.Command{
		Use:   "folders",
		Short: "List or create Zephyr Scale folders",
	}
	foldersCmd.AddCommand(newFoldersListCommand())
	foldersCmd.AddCommand(newFoldersCreateCommand())
	return foldersCmd
}

func newFoldersListCommand() *cobra.Command {
	var folderType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the project folders (Zephyr Scale Cloud only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := parseFolderType(folderType)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			client, err := newZephyrClient(cfg, log)
			if err != nil {
				return err
			}

			folders, err := client.ListFolders(cmd.Context(), ft)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(folders) == 0 {
				fmt.Fprintf(out, "No %s folders in project %s\n", ft, cfg.ProjectKey)
				return nil
			}
			for _, f := range folders {
				parent := f.ParentID.String()
				if parent == "" {
					parent = "-"
				}
				fmt.Fprintf(out, "%-10s %-10s %s\n", f.ID, parent, f.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&folderType, "type", string(domain.FolderTestCase), "folder type: TEST_CASE, TEST_CYCLE or TEST_PLAN")
	return cmd
}

func newFoldersCreateCommand() *cobra.Command {
	var folderType string
	var parentID string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a folder (on Server, NAME is the full path such as /Regression/API)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := parseFolderType(folderType)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			client, err := newZephyrClient(cfg, log)
			if err != nil {
				return err
			}

			folder, err := client.CreateFolder(cmd.Context(), &domain.Folder{
				Name:       args[0],
				ParentID:   domain.FlexibleID(parentID),
				FolderType: ft,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created folder: %s (id %s)\n", folder.Name, folder.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&folderType, "type", string(domain.FolderTestCase), "folder type: TEST_CASE, TEST_CYCLE or TEST_PLAN")
	cmd.Flags().StringVar(&parentID, "parent-id", "", "parent folder id (Cloud only)")
	return cmd
}

func parseFolderType(s string) (domain.FolderType, error) {
	switch ft := domain.FolderType(strings.ToUpper(s)); ft {
	case domain.FolderTestCase, domain.FolderTestCycle, domain.FolderTestPlan:
		return ft, nil
	default:
		return "", usageError("invalid folder type %q: must be TEST_CASE, TEST_CYCLE or TEST_PLAN", s)
	}
}
