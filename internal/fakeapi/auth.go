package fakeapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"roombook/internal/model"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type googleRequest struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email" binding:"required,email"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errorMessages[ErrInvalidRequest]
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return "Please provide all required fields"
	case "email":
		return "Please provide a valid email address"
	case "min":
		return fe.Field() + " is too short"
	case "gt", "gtfield":
		return fe.Field() + " is out of range"
	default:
		return errorMessages[ErrInvalidRequest]
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AddUser creates an account directly, bypassing the API. The sandbox uses it
// to seed an administrator.
func (s *Server) AddUser(email, password, role string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}

	email = normalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.emails[email]; exists {
		return model.User{}, ErrUserExists
	}
	if role == "" {
		role = model.RoleUser
	}
	u := &user{ID: uuid.NewString(), Email: email, Role: role, PasswordHash: hash}
	s.users[u.ID] = u
	s.emails[email] = u.ID
	return u.public(), nil
}

func (s *Server) userByEmail(email string) (*user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[normalizeEmail(email)]
	if !ok {
		return nil, false
	}
	return s.users[id], true
}

// startSession issues the session cookie and an access token for u.
func (s *Server) startSession(c *gin.Context, u *user) {
	refresh := uuid.NewString()
	s.mu.Lock()
	s.sessions[refresh] = session{UserID: u.ID, ExpiresAt: s.now().Add(sessionTTL)}
	s.mu.Unlock()

	token, err := s.generateJWT(s.newAccessClaim(u))
	if err != nil {
		abortWithError(c, errors.Join(ErrInternalServer, err))
		return
	}

	secure := c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, refresh, int(sessionTTL.Seconds()), "/", "", secure, true)

	s.logger.Info("User signed in", "email", u.Email)
	success(c, http.StatusOK, gin.H{"user": u.public(), "accessToken": token})
}

func (s *Server) authRoutes(r *gin.RouterGroup) {
	r.POST("/register", s.register)
	r.POST("/login", s.login)
	r.POST("/google", s.googleLogin)
	r.POST("/logout", s.logout)
	r.GET("/refresh-token", s.refreshToken)
	r.GET("/me", s.authMiddleware(), s.me)
	r.POST("/forgot-password", s.forgotPassword)
	r.POST("/reset-password/:token", s.resetPassword)
}

func (s *Server) register(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := s.AddUser(req.Email, req.Password, model.RoleUser)
	if err != nil {
		abortWithError(c, err)
		return
	}
	s.logger.Info("User registered", "email", u.Email)
	success(c, http.StatusCreated, gin.H{"user": u})
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	u, ok := s.userByEmail(req.Email)
	if !ok || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		abortWithError(c, ErrInvalidCredentials)
		return
	}
	s.startSession(c, u)
}

// googleLogin trusts the identity sent by the client and creates the account
// on first use.
func (s *Server) googleLogin(c *gin.Context) {
	var req googleRequest
	if !bindJSON(c, &req) {
		return
	}
	u, ok := s.userByEmail(req.Email)
	if !ok {
		created, err := s.AddUser(req.Email, uuid.NewString(), model.RoleUser)
		if err != nil && !errors.Is(err, ErrUserExists) {
			abortWithError(c, err)
			return
		}
		if err == nil {
			s.logger.Info("User registered through Google", "email", created.Email)
		}
		u, _ = s.userByEmail(req.Email)
	}
	if req.DisplayName != "" {
		s.mu.Lock()
		u.DisplayName = req.DisplayName
		s.mu.Unlock()
	}
	s.startSession(c, u)
}

func (s *Server) logout(c *gin.Context) {
	if refresh, err := c.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, refresh)
		s.mu.Unlock()
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Logged out"})
}

func (s *Server) refreshToken(c *gin.Context) {
	refresh, err := c.Cookie(SessionCookie)
	if err != nil || refresh == "" {
		abortWithError(c, ErrNoSession)
		return
	}

	s.mu.Lock()
	sess, ok := s.sessions[refresh]
	if ok && !s.now().Before(sess.ExpiresAt) {
		delete(s.sessions, refresh)
		ok = false
	}
	var u *user
	if ok {
		u = s.users[sess.UserID]
	}
	s.mu.Unlock()

	if u == nil {
		abortWithError(c, ErrNoSession)
		return
	}

	token, err := s.generateJWT(s.newAccessClaim(u))
	if err != nil {
		abortWithError(c, errors.Join(ErrInternalServer, err))
		return
	}
	success(c, http.StatusOK, gin.H{"accessToken": token})
}

func (s *Server) me(c *gin.Context) {
	s.mu.RLock()
	u := currentUser(c).public()
	s.mu.RUnlock()
	success(c, http.StatusOK, gin.H{"user": u})
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	if u, ok := s.userByEmail(req.Email); ok {
		token := uuid.NewString()
		s.mu.Lock()
		s.resetTokens[token] = u.ID
		s.mu.Unlock()
		// No mail in the sandbox, the token goes to the log.
		s.logger.Info("Password reset requested", "email", u.Email, "token", token)
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "If the email exists, a reset link has been sent"})
}

// ResetToken returns the pending reset token of email, if any.
func (s *Server) ResetToken(email string) (string, bool) {
	u, ok := s.userByEmail(email)
	if !ok {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for token, id := range s.resetTokens {
		if id == u.ID {
			return token, true
		}
	}
	return "", false
}

func (s *Server) resetPassword(c *gin.Context) {
	var req resetRequest
	if !bindJSON(c, &req) {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		abortWithError(c, errors.Join(ErrInternalServer, err))
		return
	}

	token := c.Param("token")
	s.mu.Lock()
	id, ok := s.resetTokens[token]
	if ok {
		delete(s.resetTokens, token)
		s.users[id].PasswordHash = hash
	}
	s.mu.Unlock()

	if !ok {
		abortWithError(c, ErrInvalidResetToken)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Password has been reset"})
}

type accountRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

func (s *Server) updateAccount(c *gin.Context) {
	var req accountRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		abortWithError(c, ErrPasswordMismatch)
		return
	}

	u := currentUser(c)
	s.mu.RLock()
	current := u.PasswordHash
	s.mu.RUnlock()
	if bcrypt.CompareHashAndPassword(current, []byte(req.CurrentPassword)) != nil {
		abortWithError(c, ErrWrongPassword)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		abortWithError(c, errors.Join(ErrInternalServer, err))
		return
	}
	s.mu.Lock()
	u.PasswordHash = hash
	public := u.public()
	s.mu.Unlock()

	success(c, http.StatusOK, gin.H{"user": public})
}
