package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
)

// SessionUsecase signs users in against the configured backend.
// The resulting session is handed back to the caller, which threads it through ctx.
type SessionUsecase struct {
	auth      contract.IAuthBackend
	validator usecasecontract.IValidator
	logger    usecasecontract.IAppLogger
}

// NewSessionUsecase creates a SessionUsecase.
func NewSessionUsecase(auth contract.IAuthBackend, validator usecasecontract.IValidator, logger usecasecontract.IAppLogger) *SessionUsecase {
	return &SessionUsecase{auth: auth, validator: validator, logger: logger}
}

// SignIn exchanges email and password for a session.
func (u *SessionUsecase) SignIn(ctx context.Context, email, password string) (*entity.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := u.validator.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	sess, err := u.auth.SignIn(ctx, email, password)
	if err != nil {
		u.logger.Warnf("sign in failed for %s: %v", email, err)
		return nil, err
	}
	u.logger.Infof("signed in as %s", sess.UserID)
	return sess, nil
}

type registrationInput struct {
	Username string `validate:"required,handle"`
	Name     string `validate:"required,notblank,max=80"`
}

// Register creates an account. Usernames are stored lowercase without the leading @.
// The new member still has to sign in.
func (u *SessionUsecase) Register(ctx context.Context, reg entity.Registration) (*entity.User, error) {
	reg.Email = strings.TrimSpace(strings.ToLower(reg.Email))
	reg.Username = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(reg.Username), "@"))
	reg.Name = strings.TrimSpace(reg.Name)

	if err := u.validator.ValidateEmail(reg.Email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := u.validator.ValidatePasswordStrength(reg.Password); err != nil {
		return nil, err
	}
	if err := u.validator.ValidateStruct(registrationInput{Username: reg.Username, Name: reg.Name}); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	user, err := u.auth.SignUp(ctx, reg)
	if err != nil {
		u.logger.Warnf("sign up failed for %s: %v", reg.Email, err)
		return nil, err
	}
	u.logger.Infof("registered %s as %s", reg.Email, user.ID)
	return user, nil
}

type profileInput struct {
	Name     *string `validate:"omitempty,notblank,max=80"`
	Username *string `validate:"omitempty,handle"`
	Email    *string `validate:"omitempty,email"`
	Bio      *string `validate:"omitempty,max=500"`
}

// UpdateProfile edits the signed-in member's profile.
func (u *SessionUsecase) UpdateProfile(ctx context.Context, update entity.ProfileUpdate) (*entity.User, error) {
	op := "update profile"
	if _, err := entity.RequireSession(ctx, op); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, fmt.Errorf("nothing to update")
	}
	if update.Username != nil {
		handle := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(*update.Username), "@"))
		update.Username = &handle
	}
	if update.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*update.Email))
		update.Email = &email
	}
	in := profileInput{Name: update.Name, Username: update.Username, Email: update.Email, Bio: update.Bio}
	if err := u.validator.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	user, err := u.auth.UpdateProfile(ctx, update)
	if err != nil {
		return nil, entity.AsMutationError(op, err)
	}
	return user, nil
}
