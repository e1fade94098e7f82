package models

import (
	"encoding/json"
	"time"
)

// AdminRole determines which admin endpoints an account may call
type AdminRole string

const (
	AdminRoleSuper   AdminRole = "super_admin"
	AdminRoleExpress AdminRole = "express_admin"
	AdminRoleViewer  AdminRole = "viewer_admin"
)

// Admin is a back-office account. Express admins are bound to one express and
// must present their permanent code at login.
type Admin struct {
	ID            int64     `json:"admin_id" db:"admin_id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	Role          AdminRole `json:"role" db:"role"`
	ExpressID     *int64    `json:"express_id,omitempty" db:"express_id"`
	PermanentCode *string   `json:"-" db:"permanent_code"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// AdminLoginRequest authenticates an admin
type AdminLoginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	PermanentCode string `json:"permanent_code,omitempty"`
}

// AdminLoginResponse carries the admin token
type AdminLoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	Admin     *Admin `json:"admin"`
}

// AuditLog is one recorded admin action
type AuditLog struct {
	ID         int64           `json:"audit_id" db:"audit_id"`
	AdminID    *int64          `json:"admin_id,omitempty" db:"admin_id"`
	AdminName  *string         `json:"admin_name,omitempty" db:"admin_name"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   *int64          `json:"entity_id,omitempty" db:"entity_id"`
	OldValue   json.RawMessage `json:"old_value,omitempty" db:"old_value"`
	NewValue   json.RawMessage `json:"new_value,omitempty" db:"new_value"`
	IPAddress  string          `json:"ip_address" db:"ip_address"`
	UserAgent  string          `json:"user_agent" db:"user_agent"`
	DeviceInfo json.RawMessage `json:"device_info,omitempty" db:"device_info"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
