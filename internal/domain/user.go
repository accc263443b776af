package domain

import (
	"context"
	"time"
)

type PhoneType string

const (
	PhoneTypeMobile PhoneType = "MOBILE"
	PhoneTypeHome   PhoneType = "HOME"
	PhoneTypeWork   PhoneType = "WORK"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PrimaryEmail string    `gorm:"size:140;uniqueIndex;not null" json:"primary_email"`
	Username     string    `gorm:"size:60;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	FullName     string    `gorm:"size:140" json:"full_name"`
	Phones       []Phone   `gorm:"constraint:OnDelete:CASCADE" json:"phones,omitempty"`
	Emails       []Email   `gorm:"constraint:OnDelete:CASCADE" json:"emails,omitempty"`
	Addresses    []Address `gorm:"constraint:OnDelete:CASCADE" json:"addresses,omitempty"`
	Cart         *Cart     `gorm:"constraint:OnDelete:CASCADE" json:"cart,omitempty"`
	Orders       []Order   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Phone struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Number      string    `gorm:"size:20;not null" json:"number"`
	Type        PhoneType `gorm:"type:varchar(10);not null" json:"type"`
	HasWhatsapp bool      `json:"has_whatsapp"`
	HasSignal   bool      `json:"has_signal"`
	HasTelegram bool      `json:"has_telegram"`
}

// Email is a secondary address. Both primary and secondary addresses are
// login-eligible identifiers, so uniqueness spans users.primary_email and
// this table together.
type Email struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     uint   `gorm:"index;not null" json:"user_id"`
	Address    string `gorm:"size:140;uniqueIndex;not null" json:"address"`
	IsIdentity bool   `json:"is_identity"`
}

type Address struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       uint   `gorm:"index;not null" json:"user_id"`
	Street       string `gorm:"size:180;not null" json:"street"`
	Number       string `gorm:"size:30" json:"number"`
	Complement   string `gorm:"size:140" json:"complement"`
	Neighborhood string `gorm:"size:140;not null" json:"neighborhood"`
	City         string `gorm:"size:140;not null" json:"city"`
	State        string `gorm:"size:2;not null" json:"state"`
	ZipCode      string `gorm:"size:10;not null" json:"zip_code"`
	Country      string `gorm:"size:80;not null" json:"country"`
	IsPrimary    bool   `json:"is_primary"`
}

type UserRepo interface {
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByPrimaryEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id uint) error
	// EmailInUse reports whether address is taken as any user's primary
	// email or as a secondary Email row, ignoring rows owned by excludeUserID.
	EmailInUse(ctx context.Context, address string, excludeUserID uint) (bool, error)
	// ReplaceContacts deletes every phone/email/address owned by userID and
	// recreates them from the given slices, all in one transaction.
	ReplaceContacts(ctx context.Context, userID uint, phones []Phone, emails []Email, addresses []Address) error
}

type AddressRepo interface {
	// Create persists the address; when it is primary, every other address
	// of the same user is demoted in the same transaction.
	Create(ctx context.Context, a *Address) error
	Save(ctx context.Context, a *Address) error
	FindByID(ctx context.Context, id uint) (*Address, error)
	ListByUser(ctx context.Context, userID uint) ([]Address, error)
}
