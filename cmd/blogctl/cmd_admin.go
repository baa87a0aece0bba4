package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"blog_admin/internal/domain"
	"blog_admin/internal/listing"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage categories (admin)",
	RunE:  runCategoriesList,
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	RunE:  runCategoriesList,
}

var categoriesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesAdd,
}

var categoriesRenameCmd = &cobra.Command{
	Use:   "rename <category-id> <name>",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(2),
	RunE:  runCategoriesRename,
}

var categoriesDeleteCmd = &cobra.Command{
	Use:   "delete <category-id>",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesDelete,
}

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Manage members (admin)",
	RunE:  runMembersList,
}

var membersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List members by name",
	RunE:  runMembersList,
}

var membersBlockCmd = &cobra.Command{
	Use:   "block <member-id>",
	Short: "Block a member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setMemberStatus(cmd, args[0], domain.MemberBlocked)
	},
}

var membersUnblockCmd = &cobra.Command{
	Use:   "unblock <member-id>",
	Short: "Unblock a member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setMemberStatus(cmd, args[0], domain.MemberActive)
	},
}

var membersDeleteCmd = &cobra.Command{
	Use:   "delete <member-id>",
	Short: "Delete a member",
	Args:  cobra.ExactArgs(1),
	RunE:  runMembersDelete,
}

func loadCategories(cmd *cobra.Command) (*listing.Controller[domain.Category], error) {
	if err := current.requireAdmin(); err != nil {
		return nil, err
	}
	categories := current.categories()
	if err := categories.Load(cmd.Context()); err != nil {
		return nil, err
	}
	categories.SetFilter(listing.Filter{Search: listFilter.Search})
	categories.SetPage(listPage)
	return categories, nil
}

func runCategoriesList(cmd *cobra.Command, args []string) error {
	categories, err := loadCategories(cmd)
	if err != nil {
		return err
	}
	defer categories.Close()

	renderCategories(cmd.OutOrStdout(), categories.View())
	return nil
}

func runCategoriesAdd(cmd *cobra.Command, args []string) error {
	categories, err := loadCategories(cmd)
	if err != nil {
		return err
	}
	defer categories.Close()

	c, err := categories.Create(cmd.Context(), domain.Category{Name: args[0]})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added category %q (%s).\n", c.Name, c.ID)
	return nil
}

func runCategoriesRename(cmd *cobra.Command, args []string) error {
	categories, err := loadCategories(cmd)
	if err != nil {
		return err
	}
	defer categories.Close()

	if _, err := categories.Update(cmd.Context(), domain.ID(args[0]), domain.Patch{"name": args[1]}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed category %s to %q.\n", args[0], args[1])
	return nil
}

func runCategoriesDelete(cmd *cobra.Command, args []string) error {
	categories, err := loadCategories(cmd)
	if err != nil {
		return err
	}
	defer categories.Close()

	if err := categories.Remove(cmd.Context(), domain.ID(args[0])); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s.\n", args[0])
	return nil
}

func loadMembers(cmd *cobra.Command) (*listing.Controller[domain.Member], error) {
	if err := current.requireAdmin(); err != nil {
		return nil, err
	}
	members := current.members()
	if err := members.Load(cmd.Context()); err != nil {
		return nil, err
	}
	members.Reverse(listReverse)
	members.SetFilter(listing.Filter{Search: listFilter.Search})
	members.SetPage(listPage)
	return members, nil
}

func runMembersList(cmd *cobra.Command, args []string) error {
	members, err := loadMembers(cmd)
	if err != nil {
		return err
	}
	defer members.Close()

	renderMembers(cmd.OutOrStdout(), members.View())
	return nil
}

func setMemberStatus(cmd *cobra.Command, id, status string) error {
	members, err := loadMembers(cmd)
	if err != nil {
		return err
	}
	defer members.Close()

	m, err := members.SetStatus(cmd.Context(), domain.ID(id), status)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Member %s is now %s.\n", m.Name, m.Status)
	return nil
}

func runMembersDelete(cmd *cobra.Command, args []string) error {
	members, err := loadMembers(cmd)
	if err != nil {
		return err
	}
	defer members.Close()

	if err := members.Remove(cmd.Context(), domain.ID(args[0])); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted member %s.\n", args[0])
	return nil
}

func init() {
	addListFlags(categoriesCmd, false, false)
	addListFlags(categoriesListCmd, false, false)
	addListFlags(membersCmd, false, false)
	addListFlags(membersListCmd, false, false)

	categoriesCmd.AddCommand(categoriesListCmd, categoriesAddCmd, categoriesRenameCmd, categoriesDeleteCmd)
	membersCmd.AddCommand(membersListCmd, membersBlockCmd, membersUnblockCmd, membersDeleteCmd)
}
