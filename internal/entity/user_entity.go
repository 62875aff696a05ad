package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID
	Username     string
	DisplayName  string
	Email        string
	PasswordHash string
	Image        *string
	IsBanned     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserProfile is the minimal public view of a user attached to serialized authors.
type UserProfile struct {
	Id          uuid.UUID
	Username    string
	DisplayName string
	Image       *string
}

func (u *User) Profile() UserProfile {
	return UserProfile{
		Id:          u.Id,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Image:       u.Image,
	}
}

// Actor is the authenticated user performing a request.
type Actor struct {
	Id          uuid.UUID
	DisplayName string
	IsBanned    bool
}

func (u *User) Actor() Actor {
	return Actor{Id: u.Id, DisplayName: u.DisplayName, IsBanned: u.IsBanned}
}
