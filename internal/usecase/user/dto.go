package user

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64 `validate:"required,gt=0"`
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	ID    int64
	Name  string
	Email string
}

// ListUsersRequest represents the request for the full directory snapshot.
// It carries no parameters: the directory is neither paginated nor searchable.
type ListUsersRequest struct{}

// ListUsersResponse holds every user record in ascending ID order.
type ListUsersResponse struct {
	Users []User
}

// Empty reports whether the snapshot contains no records.
func (r *ListUsersResponse) Empty() bool {
	return r == nil || len(r.Users) == 0
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID    int64
	Name  string
	Email string
}
