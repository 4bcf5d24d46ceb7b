package dto

type UserResponse struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name,omitempty"`
	Role     string  `json:"role"`
	Status   string  `json:"status"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
}
