// Package view holds the HTML templates of the user directory.
package view

import (
	"embed"
	"html/template"
	"net/http"

	"user-directory/internal/usecase/user"
)

// Template names.
const (
	UsersTemplate = "users.html"
	ErrorTemplate = "error.html"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// MustTemplates is like Templates but panics on a parse error.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// UsersPage is the data of the directory page.
type UsersPage struct {
	Users []user.User
}

// ErrorPage is the data of the generic error page. It never carries driver detail.
type ErrorPage struct {
	Title   string
	Message string
}

// NewErrorPage returns the generic page for an HTTP status.
func NewErrorPage(status int) ErrorPage {
	switch status {
	case http.StatusServiceUnavailable:
		return ErrorPage{
			Title:   "Service Unavailable",
			Message: "The user directory is temporarily unavailable. Please try again later.",
		}
	default:
		return ErrorPage{
			Title:   "Internal Server Error",
			Message: "Something went wrong while loading the user directory.",
		}
	}
}
