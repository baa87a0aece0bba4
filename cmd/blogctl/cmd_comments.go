package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"blog_admin/internal/domain"
	"blog_admin/internal/service"
)

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Add or delete comments on a post",
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <post-id> <text>...",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCommentsAdd,
}

var commentsDeleteCmd = &cobra.Command{
	Use:   "delete <post-id> <comment-id>",
	Short: "Delete your comment, or any comment as admin",
	Args:  cobra.ExactArgs(2),
	RunE:  runCommentsDelete,
}

func runCommentsAdd(cmd *cobra.Command, args []string) error {
	thread, err := current.discussion().Detail(cmd.Context(), domain.ID(args[0]))
	if err != nil {
		return err
	}
	defer thread.Close()

	c, err := thread.AddComment(cmd.Context(), strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added comment %s.\n", c.ID)
	return nil
}

func runCommentsDelete(cmd *cobra.Command, args []string) error {
	thread, err := current.discussion().Detail(cmd.Context(), domain.ID(args[0]))
	if err != nil {
		return err
	}
	defer thread.Close()

	if err := thread.DeleteComment(cmd.Context(), domain.ID(args[1])); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted comment %s.\n", args[1])
	return nil
}

func snapshotThread(t *service.Thread) threadView {
	v := threadView{
		Post:      t.Post,
		Comments:  t.Comments.View(),
		CanDelete: make(map[domain.ID]bool),
	}
	if t.Owner != nil {
		v.OwnerName = t.Owner.FullName
	}
	for _, c := range v.Comments.Items {
		v.CanDelete[c.ID] = t.CanDelete(c)
	}
	return v
}

func init() {
	commentsCmd.AddCommand(commentsAddCmd, commentsDeleteCmd)
}
