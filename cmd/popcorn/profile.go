package main

import (
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/infrastructure/validator"
	"github.com/popcornsocial/popcorn/internal/usecase"
	"github.com/spf13/cobra"
)

func profileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile <userId>",
		Short: "Show the counters of a profile page",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			ctx, err := a.context(cmd.Context())
			if err != nil {
				return err
			}
			profiles := usecase.NewProfileUsecase(a.backend)
			stats, err := profiles.LoadStats(ctx, args[0])
			if err != nil {
				return err
			}
			following, err := profiles.FollowState(ctx, args[0])
			if err != nil {
				return err
			}
			a.printf("reviews:     %d", stats.Reviews)
			a.printf("likes:       %d", stats.Likes)
			a.printf("collections: %d", stats.Collections)
			a.printf("saved:       %d", stats.Saved)
			a.printf("comments:    %d", stats.Comments)
			a.printf("followers:   %d", stats.Followers)
			a.printf("following:   %d", stats.Following)
			a.printf("you follow:  %t", following)
			return nil
		}),
	}
	cmd.AddCommand(profileEditCmd(opts))
	return cmd
}

func profileEditCmd(opts *rootOptions) *cobra.Command {
	var name, username, email, bio, image string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit your own profile",
		Long:  `Edit your own profile. Only the flags that are given are changed.`,
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			ctx, err := a.context(cmd.Context())
			if err != nil {
				return err
			}
			var update entity.ProfileUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				update.Name = &name
			}
			if flags.Changed("username") {
				update.Username = &username
			}
			if flags.Changed("email") {
				update.Email = &email
			}
			if flags.Changed("bio") {
				update.Bio = &bio
			}
			if flags.Changed("image") {
				update.ProfileImage = &image
			}
			sessions := usecase.NewSessionUsecase(a.backend, validator.NewValidator(), a.logger.Named("session"))
			user, err := sessions.UpdateProfile(ctx, update)
			if err != nil {
				return err
			}
			a.printf("Updated profile of %s (%s)", user.Handle(), user.Name)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&username, "username", "", "handle")
	cmd.Flags().StringVar(&email, "email", "", "contact email")
	cmd.Flags().StringVar(&bio, "bio", "", "short bio")
	cmd.Flags().StringVar(&image, "image", "", "profile image URL")
	return cmd
}
