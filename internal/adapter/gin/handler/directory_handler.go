package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory/internal/adapter/gin/view"
	"user-directory/internal/usecase/user"
	"user-directory/pkg/logger"
)

// DirectoryHandler serves the HTML user directory page.
type DirectoryHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewDirectoryHandler creates a new DirectoryHandler instance
func NewDirectoryHandler(uc user.Usecase, log *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		uc:  uc,
		log: log,
	}
}

// ShowDirectory handles GET / with a table of every user, or a
// "No users found." heading when the table is empty.
func (h *DirectoryHandler) ShowDirectory(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{})
	if err != nil {
		status, _ := classify(err)
		logger.WithContext(c.Request.Context(), h.log).Error("render user directory failed",
			zap.Int("status", status),
			zap.Error(err),
		)
		c.HTML(status, view.ErrorTemplate, view.NewErrorPage(status))
		return
	}

	c.HTML(http.StatusOK, view.UsersTemplate, view.UsersPage{Users: resp.Users})
}
