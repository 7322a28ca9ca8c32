package main

import (
	"context"
	"errors"
	"strings"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/usecase"
	"github.com/spf13/cobra"
)

func commentsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "List, add and delete comments on a post or collection",
	}
	cmd.AddCommand(commentsListCmd(opts), commentsAddCmd(opts), commentsDeleteCmd(opts))
	return cmd
}

// openThread loads the thread of the parent named by args[0] (kind) and args[1] (id).
func openThread(ctx context.Context, a *app, args []string) (*usecase.CommentThread, error) {
	kind, err := parseKind(args[0])
	if err != nil {
		return nil, err
	}
	thread := usecase.NewCommentThread(a.backend, a.logger.Named("comments"), entity.ParentRef{Kind: kind, ID: args[1]}, 0)
	if err := thread.Load(ctx); err != nil {
		return nil, err
	}
	thread.SetCount(int64(len(thread.Comments())))
	return thread, nil
}

func printThread(a *app, thread *usecase.CommentThread) {
	a.printf("%d comment(s)", thread.Count())
	for _, c := range thread.Comments() {
		a.printf("  [%s] %s %s: %s", c.ID, c.CreatedAt.Format("2006-01-02 15:04"), c.AuthorHandle, c.Text)
	}
}

func commentsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <post|collection> <id>",
		Short: "Show the comments, oldest first",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			ctx, err := a.context(cmd.Context())
			if err != nil {
				return err
			}
			thread, err := openThread(ctx, a, args)
			if err != nil {
				return err
			}
			printThread(a, thread)
			return nil
		}),
	}
}

func commentsAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <post|collection> <id> <text...>",
		Short: "Add a comment and show the refreshed list",
		Args:  cobra.MinimumNArgs(3),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			ctx, err := a.context(cmd.Context())
			if err != nil {
				return err
			}
			thread, err := openThread(ctx, a, args)
			if err != nil {
				return err
			}
			err = thread.Add(ctx, strings.Join(args[2:], " "))
			if errors.Is(err, usecase.ErrReloadFailed) {
				a.printf("comment added, list may be out of date: %v", err)
				return nil
			}
			if err != nil {
				return err
			}
			printThread(a, thread)
			return nil
		}),
	}
}

func commentsDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post|collection> <id> <commentId>",
		Short: "Delete one of your comments",
		Args:  cobra.ExactArgs(3),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			ctx, err := a.context(cmd.Context())
			if err != nil {
				return err
			}
			thread, err := openThread(ctx, a, args)
			if err != nil {
				return err
			}
			if err := thread.Delete(ctx, args[2]); err != nil {
				return err
			}
			printThread(a, thread)
			return nil
		}),
	}
}
