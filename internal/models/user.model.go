package models

import (
	"time"

	"fleetwash/internal/roles"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	BaseUUIDModel
	FirstName   string     `gorm:"type:text"                          json:"firstName"`
	LastName    string     `gorm:"type:text"                          json:"lastName"`
	FullName    string     `gorm:"type:text"                          json:"fullName"`
	Email       *string    `gorm:"type:text;uniqueIndex"              json:"email"`
	Role        roles.Role `gorm:"type:text;not null;default:employee" json:"role"`
	ManagerID   *uuid.UUID `gorm:"type:uuid"                          json:"managerId,omitempty"`
	Manager     *User      `gorm:"foreignKey:ManagerID"               json:"manager,omitempty"`
	LocationID  *uuid.UUID `gorm:"type:uuid"                          json:"locationId,omitempty"`
	Location    *Location  `gorm:"foreignKey:LocationID"              json:"location,omitempty"`
	IsActive    bool       `gorm:"type:bool;default:true"             json:"isActive"`
	LastLoginAt *time.Time `gorm:"type:timestamp"                     json:"lastLoginAt,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if err := u.BaseUUIDModel.BeforeCreate(tx); err != nil {
		return err
	}
	if u.FullName == "" {
		u.FullName = u.FirstName + " " + u.LastName
	}
	if u.Role == "" {
		u.Role = roles.Employee
	}
	return nil
}

// UserProfile represents public user information
type UserProfile struct {
	ID        string     `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	FullName  string     `json:"fullName"`
	Email     *string    `json:"email,omitempty"`
	Role      roles.Role `json:"role"`
	ManagerID *uuid.UUID `json:"managerId,omitempty"`
	IsActive  bool       `json:"isActive"`
}

// ToProfile converts a User to a UserProfile (public information only)
func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:        u.ID.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		ManagerID: u.ManagerID,
		IsActive:  u.IsActive,
	}
}

// HasManager reports whether the user has someone to escalate removals to.
func (u *User) HasManager() bool {
	return u.ManagerID != nil && *u.ManagerID != uuid.Nil
}
