// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including User, SocialAccount, Post and Analytics structures.
package model

// User roles.
const (
	RoleProfessional = "professional"
	RoleBrand        = "brand"
	RoleManager      = "manager"
)

// User represents a registered dashboard user.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // Never expose in JSON
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	Role         string `json:"role"`
}

// IsManager returns true if the user has the manager role.
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleProfessional, RoleBrand, RoleManager:
		return true
	}
	return false
}
