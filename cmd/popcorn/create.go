package main

import (
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/usecase"
	"github.com/spf13/cobra"
)

func postCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish movie reviews",
	}
	cmd.AddCommand(postCreateCmd(opts))
	return cmd
}

func postCreateCmd(opts *rootOptions) *cobra.Command {
	var draft entity.PostDraft

	cmd := &cobra.Command{
		Use:   "create <movie title>",
		Short: "Publish a review",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			ctx, err := a.context(cmd.Context())
			if err != nil {
				return err
			}
			draft.MovieTitle = args[0]
			post, err := usecase.NewFeedUsecase(a.backend, a.logger.Named("feed")).CreatePost(ctx, draft)
			if err != nil {
				return err
			}
			a.printf("Published review %s of %s", post.ID, post.MovieTitle)
			return nil
		}),
	}
	cmd.Flags().StringVar(&draft.ReviewText, "review", "", "review text")
	cmd.Flags().IntVar(&draft.Rating, "rating", 5, "stars, 0 to 5")
	cmd.Flags().IntVar(&draft.Year, "year", 0, "release year")
	cmd.Flags().StringVar(&draft.MovieImage, "image", "", "poster URL")
	_ = cmd.MarkFlagRequired("review")
	return cmd
}

func collectionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Curate movie collections",
	}
	cmd.AddCommand(collectionCreateCmd(opts))
	return cmd
}

func collectionCreateCmd(opts *rootOptions) *cobra.Command {
	var draft entity.CollectionDraft

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			ctx, err := a.context(cmd.Context())
			if err != nil {
				return err
			}
			draft.Title = args[0]
			col, err := usecase.NewFeedUsecase(a.backend, a.logger.Named("feed")).CreateCollection(ctx, draft)
			if err != nil {
				return err
			}
			visibility := "public"
			if col.IsPrivate {
				visibility = "private"
			}
			a.printf("Created %s collection %s with %d movie(s)", visibility, col.ID, col.MoviesCount)
			return nil
		}),
	}
	cmd.Flags().StringVar(&draft.Description, "description", "", "what the collection is about")
	cmd.Flags().StringSliceVar(&draft.Movies, "movie", nil, "movie title, repeatable")
	cmd.Flags().BoolVar(&draft.IsPrivate, "private", false, "hide the collection from other users")
	return cmd
}
