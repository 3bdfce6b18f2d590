package users

import (
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Validation bounds for user fields. The collection schema validator
// (see schema.go) enforces the same bounds server-side.
const (
	NameMinLength = 2
	NameMaxLength = 100
	AgeMin        = 1
	AgeMax        = 150
)

// emailPattern matches the pattern used by the collection's $jsonSchema
// validator so both layers accept the same set of addresses.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// User represents a user document in the users collection
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Age       int                `bson:"age" json:"age"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}

// UserResponse is the externally visible projection of a User
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts a stored user to its response projection
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID.Hex(),
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
	}
}

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

// Validate validates the create user request
func (r *CreateUserRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := validateName(r.Name); err != nil {
		return err
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	return validateAge(r.Age)
}

// ToUser converts the request to a User. ID and CreatedAt are assigned
// by the store on insert.
func (r *CreateUserRequest) ToUser() *User {
	return &User{
		Name:  r.Name,
		Email: r.Email,
		Age:   r.Age,
	}
}

// UpdateUserRequest represents a request to update a user. Nil fields
// are left unchanged.
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Age   *int    `json:"age,omitempty"`
}

// Validate validates the update user request
func (r *UpdateUserRequest) Validate() error {
	if r.Name != nil {
		if err := validateName(*r.Name); err != nil {
			return err
		}
	}
	if r.Email != nil {
		if err := validateEmail(*r.Email); err != nil {
			return err
		}
	}
	if r.Age != nil {
		if err := validateAge(*r.Age); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the set fields onto an existing user
func (r *UpdateUserRequest) Apply(u *User) {
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.Age != nil {
		u.Age = *r.Age
	}
}

func validateName(name string) error {
	length := utf8.RuneCountInString(name)
	if length < NameMinLength || length > NameMaxLength {
		return fmt.Errorf("name must be between %d and %d characters", NameMinLength, NameMaxLength)
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("email must be a valid email address")
	}
	return nil
}

func validateAge(age int) error {
	if age < AgeMin || age > AgeMax {
		return fmt.Errorf("age must be between %d and %d", AgeMin, AgeMax)
	}
	return nil
}
