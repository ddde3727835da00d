package models

const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
)

type User struct {
	ID       int     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string  `json:"username" gorm:"type:varchar(255);not null;uniqueIndex"`
	Email    string  `json:"email" gorm:"type:varchar(255);not null"`
	FullName *string `json:"full_name,omitempty" gorm:"type:varchar(255)"`
	ImageURL *string `json:"image_url,omitempty" gorm:"type:varchar(512)"`
	Role     string  `json:"role" gorm:"type:varchar(32);not null;default:customer"`
}

// DisplayName falls back to the username when no full name is set.
func (u User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Username
}
