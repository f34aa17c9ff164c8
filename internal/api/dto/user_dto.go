package dto

import (
	"time"

	"github.com/spec-kit/user-management/internal/domain"
)

// UserRequest is the wire payload for create and update. Password is
// write-only: accepted here, never present on responses. Status and role
// are pointers so an omitted field can be told apart from a supplied one
// (patch semantics on update).
type UserRequest struct {
	Username    string             `json:"username" form:"username" validate:"required,min=3,max=50"`
	Email       string             `json:"email" form:"email" validate:"required,email"`
	Password    string             `json:"password" form:"password" validate:"omitempty,min=6"`
	FirstName   string             `json:"first_name" form:"first_name" validate:"required"`
	LastName    string             `json:"last_name" form:"last_name" validate:"required"`
	PhoneNumber *string            `json:"phone_number" form:"phone_number" validate:"omitempty,number,min=10,max=15"`
	Status      *domain.UserStatus `json:"status" form:"status" validate:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED"`
	Role        *domain.UserRole   `json:"role" form:"role" validate:"omitempty,oneof=ADMIN MODERATOR USER"`
}

// UserResponse is the outbound user shape. No password material is ever
// copied into it.
type UserResponse struct {
	ID          int64             `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	PhoneNumber *string           `json:"phone_number,omitempty"`
	Status      domain.UserStatus `json:"status"`
	Role        domain.UserRole   `json:"role"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// UserListResponse is the envelope for list endpoints.
type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Count      int            `json:"count"`
	TotalCount int64          `json:"total_count"`
}

// ToEntity builds a new entity from the request. ID and timestamps are
// server-assigned and deliberately absent; the raw password stays out of
// the entity until the service hashes it. Omitted status/role fall back
// to the defaults new accounts start with.
func (r UserRequest) ToEntity() *domain.User {
	user := &domain.User{
		Username:    r.Username,
		Email:       r.Email,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
		Status:      domain.UserStatusActive,
		Role:        domain.UserRoleUser,
	}
	if r.Status != nil {
		user.Status = *r.Status
	}
	if r.Role != nil {
		user.Role = *r.Role
	}
	return user
}

// NewUserResponse maps an entity to its wire shape, dropping the password
// hash.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PhoneNumber: user.PhoneNumber,
		Status:      user.Status,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// NewUserResponses maps a list preserving repository order.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
