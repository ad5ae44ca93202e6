package fakeapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const ctxUser = "user"

type errorStruct struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// errorHandler turns errors added to the gin context into {status, message} responses.
func (s *Server) errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		statusCode := GetErrorStatus(err)
		message := GetErrorMessage(err)

		if statusCode >= 500 {
			s.logger.Error("Request failed with server error", "error", err, "status", statusCode,
				"path", c.Request.URL.Path, "method", c.Request.Method)
		} else {
			s.logger.Debug("Request failed with client error", "error", err, "status", statusCode,
				"path", c.Request.URL.Path, "method", c.Request.Method)
		}

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(statusCode, errorStruct{Status: "error", Message: message})
		}
	}
}

// abortWithError aborts the request; errorHandler writes the response.
func abortWithError(c *gin.Context, err error) {
	c.Error(err)
	c.Abort()
}

func abortWithHTTPError(c *gin.Context, statusCode int, err error, message string) {
	if err == nil {
		err = errors.New(strings.ToLower(message))
	}
	abortWithError(c, NewHTTPError(statusCode, err, message))
}

// authMiddleware requires a valid bearer access token and loads its user.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := s.decodeAccessToken(token)
		if err != nil {
			s.logger.Debug("Invalid access token", "error", err)
			if errors.Is(err, ErrTokenExpired) {
				abortWithError(c, ErrTokenExpired)
			} else {
				abortWithError(c, ErrUnauthorized)
			}
			return
		}

		s.mu.RLock()
		u, found := s.users[claims.UserID]
		s.mu.RUnlock()
		if !found {
			abortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(ctxUser, u)
		c.Next()
	}
}

func currentUser(c *gin.Context) *user {
	return c.MustGet(ctxUser).(*user)
}

// requirePermission checks the signed in user's role against the access policy.
func (s *Server) requirePermission(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c).public()
		if !s.rbac.Can(&u, resource, action) {
			s.logger.Warn("Permission denied", "email", u.Email, "resource", resource, "action", action)
			abortWithHTTPError(c, http.StatusForbidden, ErrForbidden, "Access denied")
			return
		}
		c.Next()
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithHTTPError(c, http.StatusBadRequest, err, validationMessage(err))
		return false
	}
	return true
}
