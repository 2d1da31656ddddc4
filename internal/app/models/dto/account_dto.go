package dto

// CreateParentRequest is sent by a teacher to open a parent account
type CreateParentRequest struct {
	Username string `json:"username" binding:"required,username" example:"mdupont"`
	Email    string `json:"email" binding:"required,email" example:"parent@example.com"`
}

// ParentAccountResponse carries the new account and its one-time password.
// The password is returned once and never stored in plaintext.
type ParentAccountResponse struct {
	User              *UserResponse `json:"user"`
	TemporaryPassword string        `json:"temporaryPassword" example:"x7Kp2mQa9Rtz"`
}
