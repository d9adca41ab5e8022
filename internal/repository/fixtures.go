package repository

import "github.com/spec-kit/workorder-service/internal/domain"

// Fixtures is seed data for users and lookup tables.
type Fixtures struct {
	Users          []UserFixture          `yaml:"users"`
	Locations      []domain.Location      `yaml:"locations"`
	MachineTypes   []domain.MachineType   `yaml:"machine_types"`
	PartTypes      []domain.PartType      `yaml:"part_types"`
	WorkTypes      []domain.WorkType      `yaml:"work_types"`
	PendingReasons []domain.PendingReason `yaml:"pending_reasons"`
	Equipment      []domain.Equipment     `yaml:"equipment"`
	Parts          []domain.Part          `yaml:"parts"`
}

// UserFixture is a directory entry in seed files.
type UserFixture struct {
	ID           string `yaml:"id"`
	Username     string `yaml:"username"`
	FirstName    string `yaml:"first_name"`
	LastName     string `yaml:"last_name"`
	Email        string `yaml:"email"`
	Department   string `yaml:"department"`
	IsManager    bool   `yaml:"is_manager"`
	IsProduction bool   `yaml:"is_production"`
	IsUtilities  bool   `yaml:"is_utilities"`
	IsPurchase   bool   `yaml:"is_purchase"`
}

func (u UserFixture) User() domain.User {
	return domain.User{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Department:   u.Department,
		IsManager:    u.IsManager,
		IsProduction: u.IsProduction,
		IsUtilities:  u.IsUtilities,
		IsPurchase:   u.IsPurchase,
	}
}
