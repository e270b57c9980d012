package model

import (
	authmodel "pass-questions/internal/auth/domain/model"
	examsmodel "pass-questions/internal/exams/domain/model"
)

// Stats are the headline numbers on the admin dashboard.
type Stats struct {
	ActiveMembers  int    `json:"active_members"`
	TotalResources int64  `json:"total_resources"`
	NewSignups     int    `json:"new_signups"`
	TotalUsers     int    `json:"total_users"`
	AdminName      string `json:"admin_name"`
}

// Dashboard is everything the admin landing page shows.
type Dashboard struct {
	Stats   *Stats             `json:"stats"`
	Members []*authmodel.User  `json:"members"`
	Uploads []*examsmodel.Exam `json:"uploads"`
}

// UserSummary is one row of the user management table.
type UserSummary struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Paid     bool   `json:"paid"`
}

func Summarize(u *authmodel.User) UserSummary {
	role := u.Role
	if role == "" {
		role = authmodel.RoleUser
	}
	return UserSummary{UID: u.UID, Email: u.Email, Username: u.Username, Role: role, Paid: u.Paid}
}
