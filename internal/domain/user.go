package domain

import (
	"fmt"
	"strings"
	"time"
)

// UserStatus represents lifecycle states for a managed user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusInactive  UserStatus = "INACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// UserRole classifies account privileges.
type UserRole string

const (
	UserRoleAdmin     UserRole = "ADMIN"
	UserRoleModerator UserRole = "MODERATOR"
	UserRoleUser      UserRole = "USER"
)

// UserStatuses lists every valid status, in display order.
func UserStatuses() []UserStatus {
	return []UserStatus{UserStatusActive, UserStatusInactive, UserStatusSuspended}
}

// UserRoles lists every valid role, in display order.
func UserRoles() []UserRole {
	return []UserRole{UserRoleAdmin, UserRoleModerator, UserRoleUser}
}

// ParseUserStatus converts a raw string (case-insensitive) into a UserStatus.
// Unknown values return an error rather than an arbitrary status.
func ParseUserStatus(raw string) (UserStatus, error) {
	switch UserStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case UserStatusActive:
		return UserStatusActive, nil
	case UserStatusInactive:
		return UserStatusInactive, nil
	case UserStatusSuspended:
		return UserStatusSuspended, nil
	default:
		return "", fmt.Errorf("invalid user status: %q", raw)
	}
}

// ParseUserRole converts a raw string (case-insensitive) into a UserRole.
func ParseUserRole(raw string) (UserRole, error) {
	switch UserRole(strings.ToUpper(strings.TrimSpace(raw))) {
	case UserRoleAdmin:
		return UserRoleAdmin, nil
	case UserRoleModerator:
		return UserRoleModerator, nil
	case UserRoleUser:
		return UserRoleUser, nil
	default:
		return "", fmt.Errorf("invalid user role: %q", raw)
	}
}

// User is the persisted model for a managed account.
// PasswordHash never leaves the service layer.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  *string
	Status       UserStatus
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
