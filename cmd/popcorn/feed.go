package main

import (
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/usecase"
	"github.com/spf13/cobra"
)

func feedCmd(opts *rootOptions) *cobra.Command {
	var collections bool
	var search string

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the latest reviews, or collections with --collections",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			ctx, err := a.context(cmd.Context())
			if err != nil {
				return err
			}
			feed := usecase.NewFeedUsecase(a.backend, a.logger.Named("feed"))
			if !collections && search == "" {
				posts, err := feed.LoadPosts(ctx)
				if err != nil {
					return err
				}
				for _, p := range posts {
					a.printf("[%s] %s (%d) by %s  %d/5  likes=%d comments=%d", p.ID, p.MovieTitle, p.Year, p.UserHandle, p.Rating, p.Likes, p.Comments)
				}
				return nil
			}
			if _, err := feed.LoadCollections(ctx); err != nil {
				return err
			}
			var list []entity.Collection
			if search != "" {
				list = feed.SearchCollections(search)
			} else {
				list = feed.Collections()
			}
			for _, c := range list {
				a.printf("[%s] %s by %s  movies=%d likes=%d", c.ID, c.Title, c.Author, c.MoviesCount, c.Likes)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&collections, "collections", false, "list collections instead of reviews")
	cmd.Flags().StringVar(&search, "search", "", "filter collections by title")
	return cmd
}

func deleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post|collection> <id>",
		Short: "Delete one of your reviews or collections",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			ctx, err := a.context(cmd.Context())
			if err != nil {
				return err
			}
			feed := usecase.NewFeedUsecase(a.backend, a.logger.Named("feed"))
			if kind == entity.TargetKindPost {
				if _, err := feed.LoadPosts(ctx); err != nil {
					return err
				}
				err = feed.DeletePost(ctx, args[1])
			} else {
				if _, err := feed.LoadCollections(ctx); err != nil {
					return err
				}
				err = feed.DeleteCollection(ctx, args[1])
			}
			if err != nil {
				return err
			}
			a.printf("Deleted %s %s", kind, args[1])
			return nil
		}),
	}
}
