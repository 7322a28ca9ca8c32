package main

import (
	"errors"
	"os"

	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/infrastructure/validator"
	"github.com/popcornsocial/popcorn/internal/usecase"
	"github.com/spf13/cobra"
)

func loginCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long:  `Sign in with email and password. The password may also be given in POPCORN_PASSWORD.`,
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			if password == "" {
				password = os.Getenv("POPCORN_PASSWORD")
			}
			if password == "" {
				return errors.New("password is required (--password or POPCORN_PASSWORD)")
			}
			sessions := usecase.NewSessionUsecase(a.backend, validator.NewValidator(), a.logger.Named("session"))
			sess, err := sessions.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.saveSession(sess); err != nil {
				return err
			}
			a.printf("Signed in as %s on %s", sess.Handle(), a.backend.Name())
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.clearSession(); err != nil {
				return err
			}
			a.printf("Signed out")
			return nil
		}),
	}
}

func registerCmd(opts *rootOptions) *cobra.Command {
	var reg entity.Registration
	var image string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account. Run "popcorn login" afterwards to sign in.
The password may also be given in POPCORN_PASSWORD.`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			if reg.Password == "" {
				reg.Password = os.Getenv("POPCORN_PASSWORD")
			}
			if image != "" {
				reg.ProfileImage = &image
			}
			sessions := usecase.NewSessionUsecase(a.backend, validator.NewValidator(), a.logger.Named("session"))
			user, err := sessions.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}
			a.printf("Registered %s on %s, now run \"popcorn login\"", user.Handle(), a.backend.Name())
			return nil
		}),
	}
	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "account password")
	cmd.Flags().StringVar(&reg.Username, "username", "", "handle, with or without the leading @")
	cmd.Flags().StringVar(&reg.Name, "name", "", "display name")
	cmd.Flags().StringVar(&image, "image", "", "profile image URL")
	for _, f := range []string{"email", "username", "name"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
