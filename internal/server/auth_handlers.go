package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/folio-dev/folio/internal/auth"
	"github.com/folio-dev/folio/internal/models"
)

// CredentialsRequest is the body of signup and login.
// Field rules live in auth.Service so the email is normalized before it is checked.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const invalidBodyMessage = "Invalid request body"

// LoginResponse represents a login response
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *UserDetail `json:"user"`
}

// SignupResponse includes the created user details
type SignupResponse struct {
	User *UserDetail `json:"user"`
}

// UserDetail represents user information returned in responses
type UserDetail struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func userDetail(user *models.User) *UserDetail {
	return &UserDetail{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// respondAuthError maps the auth error taxonomy onto status codes
func (s *Server) respondAuthError(c *gin.Context, err error, operation string) {
	switch {
	case errors.Is(err, auth.ErrMalformedInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrDuplicateIdentifier):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
	case errors.Is(err, auth.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, auth.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	default:
		s.logger.Error().Err(err).Str("operation", operation).Msg("Auth operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// @Summary Sign up
// @Description Register a new user. Does not log the user in.
// @Router /api/users/signup [post]
func (s *Server) signup(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
		return
	}

	user, err := s.auth.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondAuthError(c, err, "signup")
		return
	}

	c.JSON(http.StatusCreated, SignupResponse{User: userDetail(user)})
}

// @Summary Login
// @Description Authenticate with email and password
// @Router /api/users/login [post]
func (s *Server) login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
		return
	}

	result, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondAuthError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      userDetail(result.User),
	})
}

// @Summary Get current user
// @Security BearerAuth
// @Router /api/users/me [get]
func (s *Server) getCurrentUser(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := s.auth.GetUser(c.Request.Context(), sessionData.UserID)
	if err != nil {
		s.respondAuthError(c, err, "get current user")
		return
	}

	c.JSON(http.StatusOK, userDetail(user))
}

// @Summary List users
// @Security BearerAuth
// @Router /api/users [get]
func (s *Server) listUsers(c *gin.Context) {
	users, err := s.auth.ListUsers(c.Request.Context())
	if err != nil {
		s.respondAuthError(c, err, "list users")
		return
	}

	details := make([]*UserDetail, len(users))
	for i := range users {
		details[i] = userDetail(&users[i])
	}

	c.JSON(http.StatusOK, details)
}

// @Summary Delete user
// @Description Delete a user (cannot delete self)
// @Security BearerAuth
// @Router /api/users/{id} [delete]
func (s *Server) deleteUser(c *gin.Context) {
	userID := c.Param("id")

	sessionData, _ := GetSessionData(c)
	if userID == sessionData.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete yourself"})
		return
	}

	if err := s.auth.DeleteUser(c.Request.Context(), userID); err != nil {
		s.respondAuthError(c, err, "delete user")
		return
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("deleted_by", sessionData.UserID).
		Msg("User deleted")

	c.Status(http.StatusNoContent)
}
