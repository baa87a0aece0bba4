package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"blog_admin/internal/domain"
	"blog_admin/internal/listing"
)

var (
	listFilter  listing.Filter
	listPage    int
	listReverse bool

	postInput domain.Post
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List and manage posts",
	RunE:  runPostsList,
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first",
	RunE:  runPostsList,
}

var postsShowCmd = &cobra.Command{
	Use:   "show <post-id>",
	Short: "Show a post with its author and comments",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostsShow,
}

var postsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Publish a new post",
	RunE:  runPostsAdd,
}

var postsEditCmd = &cobra.Command{
	Use:   "edit <post-id>",
	Short: "Change fields of a post you own",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostsEdit,
}

var postsStatusCmd = &cobra.Command{
	Use:       "status <post-id> <public|private>",
	Short:     "Change the visibility of a post",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{domain.StatusPublic, domain.StatusPrivate},
	RunE:      runPostsStatus,
}

var postsDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete a post you own",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostsDelete,
}

// loadPosts loads the post view and applies the list flags.
func loadPosts(cmd *cobra.Command) (*listing.Controller[domain.Post], error) {
	if listFilter.MineOnly && current.sessions.Current() == nil {
		return nil, domain.ErrNoSession
	}
	posts := current.posts()
	if err := posts.Load(cmd.Context()); err != nil {
		return nil, err
	}
	posts.Reverse(listReverse)
	posts.SetFilter(listFilter)
	posts.SetPage(listPage)
	return posts, nil
}

func runPostsList(cmd *cobra.Command, args []string) error {
	posts, err := loadPosts(cmd)
	if err != nil {
		return err
	}
	defer posts.Close()

	renderPosts(cmd.OutOrStdout(), posts.View())
	return nil
}

func runPostsShow(cmd *cobra.Command, args []string) error {
	thread, err := current.discussion().Detail(cmd.Context(), domain.ID(args[0]))
	if err != nil {
		return err
	}
	defer thread.Close()

	thread.Comments.SetPage(listPage)
	renderThread(cmd.OutOrStdout(), snapshotThread(thread))
	return nil
}

func runPostsAdd(cmd *cobra.Command, args []string) error {
	posts, err := loadPosts(cmd)
	if err != nil {
		return err
	}
	defer posts.Close()

	saved, err := posts.Create(cmd.Context(), postInput)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created post %s.\n", saved.ID)
	return nil
}

func runPostsEdit(cmd *cobra.Command, args []string) error {
	patch := domain.Patch{}
	flags := cmd.Flags()
	for flag, field := range map[string]string{
		"title":    "title",
		"desc":     "desc",
		"content":  "content",
		"category": "category",
		"image":    "image",
	} {
		if flags.Changed(flag) {
			v, _ := flags.GetString(flag)
			patch[field] = v
		}
	}
	if len(patch) == 0 {
		return fmt.Errorf("nothing to change; pass at least one of --title, --desc, --content, --category or --image")
	}

	posts, err := loadPosts(cmd)
	if err != nil {
		return err
	}
	defer posts.Close()

	if _, err := posts.Update(cmd.Context(), domain.ID(args[0]), patch); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated post %s.\n", args[0])
	return nil
}

func runPostsStatus(cmd *cobra.Command, args []string) error {
	status := args[1]
	if status != domain.StatusPublic && status != domain.StatusPrivate {
		return fmt.Errorf("status must be %q or %q", domain.StatusPublic, domain.StatusPrivate)
	}

	posts, err := loadPosts(cmd)
	if err != nil {
		return err
	}
	defer posts.Close()

	if _, err := posts.SetStatus(cmd.Context(), domain.ID(args[0]), status); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Post %s is now %s.\n", args[0], status)
	return nil
}

func runPostsDelete(cmd *cobra.Command, args []string) error {
	posts, err := loadPosts(cmd)
	if err != nil {
		return err
	}
	defer posts.Close()

	if err := posts.Remove(cmd.Context(), domain.ID(args[0])); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted post %s.\n", args[0])
	return nil
}

func addListFlags(cmd *cobra.Command, withCategory, withMine bool) {
	cmd.Flags().StringVarP(&listFilter.Search, "search", "s", "", "Search text, accents ignored")
	cmd.Flags().IntVarP(&listPage, "page", "n", 1, "Page number")
	cmd.Flags().BoolVar(&listReverse, "reverse", false, "Oldest first")
	if withCategory {
		cmd.Flags().StringVar(&listFilter.Category, "category", "", "Only this category")
	}
	if withMine {
		cmd.Flags().BoolVar(&listFilter.MineOnly, "mine", false, "Only records you own")
	}
}

func addPostFields(cmd *cobra.Command) {
	cmd.Flags().StringVar(&postInput.Title, "title", "", "Title")
	cmd.Flags().StringVar(&postInput.Desc, "desc", "", "Short description")
	cmd.Flags().StringVar(&postInput.Content, "content", "", "Body text")
	cmd.Flags().StringVar(&postInput.Category, "category", "", "Category name")
	cmd.Flags().StringVar(&postInput.Image, "image", "", "Image URL")
}

func init() {
	addListFlags(postsCmd, true, true)
	addListFlags(postsListCmd, true, true)
	postsShowCmd.Flags().IntVarP(&listPage, "page", "n", 1, "Comment page")

	addPostFields(postsAddCmd)
	postsAddCmd.Flags().StringVar(&postInput.Status, "status", domain.StatusPublic, "public or private")
	addPostFields(postsEditCmd)

	postsCmd.AddCommand(postsListCmd, postsShowCmd, postsAddCmd, postsEditCmd, postsStatusCmd, postsDeleteCmd)
}
