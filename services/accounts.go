package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gunalchandran/grocery-backend/auth"
	"github.com/gunalchandran/grocery-backend/models"
	"github.com/gunalchandran/grocery-backend/store"
)

// RegisterInput is a registration request.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Accounts handles registration, login and profiles.
type Accounts struct {
	users    store.UserStore
	tokens   *auth.TokenIssuer
	profiles ImageStore
}

func NewAccounts(users store.UserStore, tokens *auth.TokenIssuer, profiles ImageStore) *Accounts {
	return &Accounts{users: users, tokens: tokens, profiles: profiles}
}

// Register creates an account. Admin accounts are only created when
// allowAdmin is set, which callers do for API-key guarded requests.
func (a *Accounts) Register(ctx context.Context, in RegisterInput, allowAdmin bool) error {
	const op = "accounts.Register"

	in.Email = strings.TrimSpace(in.Email)
	if strings.TrimSpace(in.Name) == "" || in.Email == "" || in.Password == "" {
		return newError(op, ErrValidation, "Name, email and password are required")
	}

	role := strings.ToLower(strings.TrimSpace(in.Role))
	switch {
	case role == "" && allowAdmin:
		role = models.RoleAdmin
	case role == "":
		role = models.RoleCustomer
	case role == models.RoleAdmin && !allowAdmin:
		return newError(op, ErrForbidden, "Admin accounts can only be created by an administrator")
	case role != models.RoleAdmin && role != models.RoleCustomer:
		return newError(op, ErrValidation, "Invalid role")
	}

	if _, err := a.users.FindUserByEmail(ctx, in.Email); err == nil {
		return newError(op, ErrConflict, "Email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return translate(op, err, "")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return &Error{Op: op, Message: "Failed to register user", Err: err}
	}
	err = a.users.InsertUser(ctx, &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return &Error{Op: op, Kind: ErrConflict, Message: "Email already exists", Err: err}
	}
	return translate(op, err, "")
}

// Login checks the credentials and issues a bearer token.
func (a *Accounts) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	const op = "accounts.Login"

	user, err := a.users.FindUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(op, ErrUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return nil, translate(op, err, "")
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, newError(op, ErrUnauthorized, "Invalid credentials")
	}

	role := user.Role
	if role == "" {
		role = models.RoleCustomer
	}
	token, err := a.tokens.Issue(user.Email, role)
	if err != nil {
		return nil, &Error{Op: op, Message: "Failed to issue token", Err: err}
	}
	return &LoginResult{Token: token, Role: role, Name: user.Name, Phone: user.Phone}, nil
}

// UpdateProfile sets the phone number and, when pic is given, the profile
// picture. It returns the new picture URL, or nil when none was uploaded.
func (a *Accounts) UpdateProfile(ctx context.Context, email, phone string, pic *multipart.FileHeader) (*string, error) {
	const op = "accounts.UpdateProfile"

	if strings.TrimSpace(email) == "" || strings.TrimSpace(phone) == "" {
		return nil, newError(op, ErrValidation, "Email and phone number are required!")
	}
	if _, err := a.users.FindUserByEmail(ctx, email); err != nil {
		return nil, translate(op, err, "User not found!")
	}

	upd := models.ProfileUpdate{Phone: strings.TrimSpace(phone)}
	if pic != nil {
		filename, err := a.profiles.SaveImage(pic)
		if err != nil {
			return nil, imageError(op, err)
		}
		upd.ProfilePic = filename
	}

	matched, err := a.users.UpdateProfile(ctx, email, upd)
	if err != nil {
		return nil, translate(op, err, "")
	}
	if matched == 0 {
		return nil, newError(op, ErrNotFound, "User not found!")
	}
	if upd.ProfilePic == "" {
		return nil, nil
	}
	url := a.profiles.URL(upd.ProfilePic)
	return &url, nil
}

// GetProfile returns the public profile. A user without a picture has a
// nil ProfileURL.
func (a *Accounts) GetProfile(ctx context.Context, email string) (*models.Profile, error) {
	const op = "accounts.GetProfile"

	if strings.TrimSpace(email) == "" {
		return nil, newError(op, ErrValidation, "Email is required")
	}
	user, err := a.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, translate(op, err, "User not found")
	}

	profile := &models.Profile{Email: user.Email, Name: user.Name, Phone: user.Phone}
	if user.ProfilePic != "" {
		url := a.profiles.URL(user.ProfilePic)
		profile.ProfileURL = &url
	}
	return profile, nil
}
