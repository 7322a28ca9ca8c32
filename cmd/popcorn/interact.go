package main

import (
	"context"
	"fmt"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/usecase"
	"github.com/spf13/cobra"
)

// toggle runs one gesture through the interaction controller, printing the
// optimistic value before the backend answers and the settled value after.
func toggle(ctx context.Context, a *app, key entity.TargetKey, initial entity.InteractionValue) error {
	controller := usecase.NewInteractionUsecase(
		usecase.NewMutationClient(a.backend),
		a.logger.Named("interaction"),
		a.interactions,
	)
	controller.OnChange(func(k entity.TargetKey, v entity.InteractionValue) {
		a.printf("%s -> %s", k, render(k.Interaction, v))
	})
	controller.OnAuthRequired(func(k entity.TargetKey) {
		a.printf("%s needs a signed in user, run \"popcorn login\"", k)
	})

	controller.Mount(key, initial)
	defer controller.Unmount(key)

	res, err := controller.Toggle(ctx, key)
	if err != nil {
		a.printf("%s rolled back to %s", key, render(key.Interaction, initial))
		return err
	}
	a.printf("%s settled at %s", key, render(key.Interaction, res.State.Committed))
	return nil
}

func render(interaction entity.Interaction, v entity.InteractionValue) string {
	switch interaction {
	case entity.InteractionLike:
		return fmt.Sprintf("liked=%t likes=%d", v.Active, v.Count)
	case entity.InteractionSave:
		return fmt.Sprintf("saved=%t", v.Active)
	}
	return fmt.Sprintf("following=%t", v.Active)
}

func likeCmd(opts *rootOptions) *cobra.Command {
	var liked bool

	cmd := &cobra.Command{
		Use:   "like <post|collection> <id>",
		Short: "Toggle the like of a post or collection",
		Long: `Toggle a like. Likes are plain counters on the backend, so whether you
already liked the target is passed with --liked; the command then unlikes it.`,
		Args: cobra.ExactArgs(2),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			ctx, err := a.context(cmd.Context())
			if err != nil {
				return err
			}
			count, err := a.backend.GetLikeCount(ctx, kind, args[1])
			if err != nil {
				return err
			}
			key := entity.TargetKey{Kind: kind, ID: args[1], Interaction: entity.InteractionLike}
			return toggle(ctx, a, key, entity.InteractionValue{Active: liked, Count: count})
		}),
	}
	cmd.Flags().BoolVar(&liked, "liked", false, "the target is currently liked by you")
	return cmd
}

func followCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "follow <userId>",
		Short: "Follow a user, or unfollow if already following",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			ctx, err := a.context(cmd.Context())
			if err != nil {
				return err
			}
			following, err := usecase.NewProfileUsecase(a.backend).FollowState(ctx, args[0])
			if err != nil {
				return err
			}
			key := entity.TargetKey{Kind: entity.TargetKindUser, ID: args[0], Interaction: entity.InteractionFollow}
			return toggle(ctx, a, key, entity.InteractionValue{Active: following})
		}),
	}
}

func saveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <collectionId>",
		Short: "Save a collection, or unsave it if already saved",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			ctx, err := a.context(cmd.Context())
			if err != nil {
				return err
			}
			sess, err := entity.RequireSession(ctx, "save collection "+args[0])
			if err != nil {
				return err
			}
			saved, err := a.backend.ListSavedCollections(ctx, sess.UserID)
			if err != nil {
				return err
			}
			var initial entity.InteractionValue
			for _, s := range saved {
				if s.CollectionID == args[0] {
					initial = entity.InteractionValue{Active: true, RecordID: s.ID}
					break
				}
			}
			key := entity.TargetKey{Kind: entity.TargetKindCollection, ID: args[0], Interaction: entity.InteractionSave}
			return toggle(ctx, a, key, initial)
		}),
	}
}
