package domain

import (
	"strings"
	"time"
)

// User is a plant employee known to the user directory.
type User struct {
	ID           string
	Username     string
	FirstName    string
	LastName     string
	Email        string
	Department   string
	IsManager    bool
	IsProduction bool
	IsUtilities  bool
	IsPurchase   bool // directory flag only; grants no work order rights
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor converts the directory record into the identity passed to operations.
func (u User) Actor() Actor {
	return Actor{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: strings.TrimSpace(u.FirstName + " " + u.LastName),
		Capabilities: Capabilities{
			Manager:    u.IsManager,
			Production: u.IsProduction,
			Utilities:  u.IsUtilities,
			Department: u.Department,
		},
	}
}
