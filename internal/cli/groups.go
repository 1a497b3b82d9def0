package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yatube/yatube/internal/services"
)

var (
	flagGroupTitle       string
	flagGroupSlug        string
	flagGroupDescription string
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage post groups",
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a group",
	Long: `Create a group that posts can be filed under.

  yatubectl groups create --title "Books" --slug books
  yatubectl groups create --title "Films" --slug films --description "Moving pictures"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		group, err := services.NewGroupService(be.store.Groups).Create(cmd.Context(), flagGroupTitle, flagGroupSlug, flagGroupDescription)
		if err != nil {
			return fmt.Errorf("creating group: %w", err)
		}

		if flagJSON {
			return writeJSON(cmd.OutOrStdout(), group)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created group: %s (slug: %s, id: %s)\n", group.Title, group.Slug, group.ID)
		return nil
	},
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := services.NewGroupService(be.store.Groups).List(cmd.Context())
		if err != nil {
			return err
		}

		if flagJSON {
			return writeJSON(cmd.OutOrStdout(), groups)
		}
		groupTable(cmd.OutOrStdout(), groups)
		return nil
	},
}

func init() {
	groupsCreateCmd.Flags().StringVar(&flagGroupTitle, "title", "", "Group title (required)")
	groupsCreateCmd.Flags().StringVar(&flagGroupSlug, "slug", "", "URL slug: letters, digits, '-' or '_' (required)")
	groupsCreateCmd.Flags().StringVar(&flagGroupDescription, "description", "", "Group description")
	_ = groupsCreateCmd.MarkFlagRequired("title")
	_ = groupsCreateCmd.MarkFlagRequired("slug")

	groupsCmd.AddCommand(groupsCreateCmd, groupsListCmd)
	rootCmd.AddCommand(groupsCmd)
}
