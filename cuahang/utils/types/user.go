// cuahang/utils/types/user.go
package types

type LoginRequest struct {
	Username string `json:"username"`
}

type CreateUserRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
	Role     string  `json:"role,omitempty"`
}

type CreateStoreRequest struct {
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url,omitempty"`
}
