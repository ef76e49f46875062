package repository

import "kassa/internal/database"

type Repositories struct {
	Users *UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users: NewUserRepository(db),
	}
}
