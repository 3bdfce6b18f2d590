package users

import (
	"context"
)

// UserStore defines the interface for user storage operations
type UserStore interface {
	FindAll(ctx context.Context) ([]*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByNameContaining(ctx context.Context, name string) ([]*User, error)
	Insert(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) (bool, error)
}

// UserManager defines the interface for user service operations
type UserManager interface {
	GetAllUsers(ctx context.Context) ([]*UserResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	GetUserByEmail(ctx context.Context, email string) (*UserResponse, error)
	SearchUsersByName(ctx context.Context, name string) ([]*UserResponse, error)
	CreateUser(ctx context.Context, req *CreateUserRequest) (*UserResponse, error)
	UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
}
