package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openmercado/shopapi/internal/auth"
	"github.com/openmercado/shopapi/internal/domain"
)

// ErrInvalidCredentials is deliberately separate from the domain taxonomy:
// a failed login maps to 401, not to 404 or 400.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserUC struct {
	Users     domain.UserRepo
	Addresses domain.AddressRepo
}

type NewUserInput struct {
	PrimaryEmail string
	Username     string
	Password     string
	FullName     string
	Phones       []domain.Phone
	Emails       []domain.Email
	Addresses    []domain.Address
}

// Create registers a user. The primary email and username must be free, and
// the primary email must also not collide with anyone's secondary email.
// The password is stored as a bcrypt hash. The pre-checks give good error
// messages; under concurrent writes the unique indexes are the authority
// and surface as the same ErrConflict.
func (uc *UserUC) Create(ctx context.Context, in NewUserInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.PrimaryEmail))
	if email == "" || strings.TrimSpace(in.Username) == "" {
		return nil, fmt.Errorf("%w: primary email and username are required", domain.ErrInvalidArgument)
	}
	if err := uc.checkIdentifiersFree(ctx, email, in.Username, 0); err != nil {
		return nil, err
	}
	for _, e := range in.Emails {
		inUse, err := uc.Users.EmailInUse(ctx, e.Address, 0)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, fmt.Errorf("%w: email %s is already in use", domain.ErrConflict, e.Address)
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	user := &domain.User{
		PrimaryEmail: email,
		Username:     in.Username,
		PasswordHash: hash,
		FullName:     in.FullName,
	}
	if err := uc.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := uc.Users.ReplaceContacts(ctx, user.ID, in.Phones, in.Emails, in.Addresses); err != nil {
		return nil, err
	}
	return uc.Users.FindByID(ctx, user.ID)
}

type UpdateUserInput struct {
	PrimaryEmail string
	Username     string
	Password     string // empty keeps the current hash
	FullName     string
	Phones       []domain.Phone
	Emails       []domain.Email
	Addresses    []domain.Address
}

// Update replaces the user's scalar fields and, by design of the current
// API, replaces the nested contact collections wholesale: existing phones,
// emails and addresses are deleted and recreated from the payload.
func (uc *UserUC) Update(ctx context.Context, id uint, in UpdateUserInput) (*domain.User, error) {
	existing, err := uc.Users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: user %d", errUnwrap(err), id)
	}
	email := strings.ToLower(strings.TrimSpace(in.PrimaryEmail))
	if email == "" || strings.TrimSpace(in.Username) == "" {
		return nil, fmt.Errorf("%w: primary email and username are required", domain.ErrInvalidArgument)
	}
	if err := uc.checkIdentifiersFree(ctx, email, in.Username, id); err != nil {
		return nil, err
	}
	for _, e := range in.Emails {
		inUse, err := uc.Users.EmailInUse(ctx, e.Address, id)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, fmt.Errorf("%w: email %s is already in use", domain.ErrConflict, e.Address)
		}
	}

	existing.PrimaryEmail = email
	existing.Username = in.Username
	existing.FullName = in.FullName
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
		existing.PasswordHash = hash
	}
	if err := uc.Users.Save(ctx, existing); err != nil {
		return nil, err
	}
	if err := uc.Users.ReplaceContacts(ctx, id, in.Phones, in.Emails, in.Addresses); err != nil {
		return nil, err
	}
	return uc.Users.FindByID(ctx, id)
}

func (uc *UserUC) Get(ctx context.Context, id uint) (*domain.User, error) {
	u, err := uc.Users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: user %d", errUnwrap(err), id)
	}
	return u, nil
}

func (uc *UserUC) List(ctx context.Context) ([]domain.User, error) {
	return uc.Users.List(ctx)
}

func (uc *UserUC) Delete(ctx context.Context, id uint) error {
	return uc.Users.Delete(ctx, id)
}

// Authenticate resolves a primary email + password pair to the user, or
// ErrInvalidCredentials. Lookup failures and wrong passwords are not
// distinguished.
func (uc *UserUC) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := uc.Users.FindByPrimaryEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// AddAddress creates an address for the user; a primary one demotes every
// other primary inside the repo transaction.
func (uc *UserUC) AddAddress(ctx context.Context, userID uint, a *domain.Address) (*domain.Address, error) {
	if _, err := uc.Users.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("%w: user %d", errUnwrap(err), userID)
	}
	a.ID = 0
	a.UserID = userID
	if err := uc.Addresses.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAddress edits one of the user's addresses in place.
func (uc *UserUC) UpdateAddress(ctx context.Context, userID, addressID uint, details *domain.Address) (*domain.Address, error) {
	existing, err := uc.Addresses.FindByID(ctx, addressID)
	if err != nil {
		return nil, fmt.Errorf("%w: address %d", errUnwrap(err), addressID)
	}
	if existing.UserID != userID {
		return nil, fmt.Errorf("%w: address %d does not belong to user %d", domain.ErrNotFound, addressID, userID)
	}
	existing.Street = details.Street
	existing.Number = details.Number
	existing.Complement = details.Complement
	existing.Neighborhood = details.Neighborhood
	existing.City = details.City
	existing.State = details.State
	existing.ZipCode = details.ZipCode
	existing.Country = details.Country
	existing.IsPrimary = details.IsPrimary
	if err := uc.Addresses.Save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (uc *UserUC) checkIdentifiersFree(ctx context.Context, email, username string, excludeID uint) error {
	inUse, err := uc.Users.EmailInUse(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("%w: primary email %s is already registered", domain.ErrConflict, email)
	}
	other, err := uc.Users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if other != nil && other.ID != excludeID {
		return fmt.Errorf("%w: username %s is already taken", domain.ErrConflict, username)
	}
	return nil
}
