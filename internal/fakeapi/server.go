// Package fakeapi is an in-memory implementation of the booking backend.
// It serves the `roombook sandbox` command and the client's tests. Data lives
// only as long as the process.
package fakeapi

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"roombook/internal/access"
	"roombook/internal/model"
)

const (
	// SessionCookie holds the opaque refresh token.
	SessionCookie = "refreshToken"
	sessionTTL    = 7 * 24 * time.Hour
)

type Options struct {
	// Secret signs access tokens. A random secret is generated when empty.
	Secret []byte
	// TokenTTL is the access token lifetime, 15 minutes by default.
	TokenTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Logger     *slog.Logger
	// Now replaces the clock, for tests.
	Now func() time.Time
	// AllowOrigins enables credentialed CORS for browser front ends.
	AllowOrigins []string
}

type user struct {
	ID           string
	Email        string
	DisplayName  string
	Role         string
	PasswordHash []byte
}

func (u *user) public() model.User {
	return model.User{ID: u.ID, Email: u.Email, Role: u.Role, DisplayName: u.DisplayName}
}

type booking struct {
	ID          string
	UserID      string
	RoomID      string
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Status      string
	CreatedAt   time.Time
}

type session struct {
	UserID    string
	ExpiresAt time.Time
}

type Server struct {
	logger     *slog.Logger
	now        func() time.Time
	tokenTTL   time.Duration
	bcryptCost int
	rbac       *access.RBAC
	origins    []string

	mu          sync.RWMutex
	secret      []byte
	users       map[string]*user // by id
	emails      map[string]string
	rooms       map[string]*model.Room
	bookings    map[string]*booking
	sessions    map[string]session
	resetTokens map[string]string // token -> user id
}

func New(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "sandbox")

	secret := opts.Secret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate secret: %w", err)
		}
		logger.Warn("Sandbox secret is not set, using a random one")
	}

	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	policy, err := access.LoadPolicy("")
	if err != nil {
		return nil, err
	}

	return &Server{
		logger:      logger,
		now:         now,
		tokenTTL:    ttl,
		bcryptCost:  cost,
		rbac:        access.New(policy, logger),
		origins:     opts.AllowOrigins,
		secret:      secret,
		users:       make(map[string]*user),
		emails:      make(map[string]string),
		rooms:       make(map[string]*model.Room),
		bookings:    make(map[string]*booking),
		sessions:    make(map[string]session),
		resetTokens: make(map[string]string),
	}, nil
}

// RotateSecret replaces the signing secret, invalidating every issued
// access token while sessions stay valid.
func (s *Server) RotateSecret() error {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return err
	}
	s.mu.Lock()
	s.secret = secret
	s.mu.Unlock()
	s.logger.Info("Signing secret rotated")
	return nil
}

// RevokeSessions drops every session so that refreshes fail.
func (s *Server) RevokeSessions() {
	s.mu.Lock()
	s.sessions = make(map[string]session)
	s.mu.Unlock()
}

func securityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Next()
}

func (s *Server) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("Request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}

// Handler returns the gin engine serving the REST API.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger, securityHeaders)
	if len(s.origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(s.errorHandler())

	r.GET("/health", health)

	auth := r.Group("/api/auth")
	s.authRoutes(auth)

	rooms := r.Group("/api/meeting-rooms", s.authMiddleware())
	s.roomRoutes(rooms)

	bookings := r.Group("/api/bookings", s.authMiddleware())
	s.bookingRoutes(bookings)

	account := r.Group("/api/user", s.authMiddleware())
	account.PUT("/update-account-info", s.updateAccount)

	r.NoRoute(func(c *gin.Context) {
		abortWithHTTPError(c, http.StatusNotFound, nil, "Route not found")
	})

	return r
}

// health echoes the ping query parameter, "pong" by default.
func health(c *gin.Context) {
	msg := c.Query("ping")
	if msg == "" {
		msg = "pong"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func success(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}
