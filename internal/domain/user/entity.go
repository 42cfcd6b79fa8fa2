package user

// User represents one row of the users table. Records are owned by the
// external database; the service only reads them.
type User struct {
	ID    int64  // ID is the unique identifier assigned by the database
	Name  string // Name is the display name of the user
	Email string // Email is the email address of the user
}
