package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"roombook/internal/fakeapi"
	"roombook/internal/model"
	"roombook/internal/telemetry"
)

var sandboxFlags struct {
	addr          string
	adminEmail    string
	adminPassword string
}

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Run an in-memory booking backend for local use",
	Long: `Start a throwaway implementation of the booking REST API. Data lives in
memory and is lost on exit. Password reset tokens are written to the log.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return sandboxMain(ctx)
	},
}

func sandboxMain(ctx context.Context) error {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := fakeapi.New(fakeapi.Options{
		Secret:       []byte(cfg.Sandbox.Secret),
		TokenTTL:     cfg.TokenTTL(),
		Logger:       logger,
		AllowOrigins: cfg.Sandbox.AllowOrigins,
	})
	if err != nil {
		return fmt.Errorf("failed to start sandbox: %w", err)
	}

	if sandboxFlags.adminEmail != "" {
		admin, err := srv.AddUser(sandboxFlags.adminEmail, sandboxFlags.adminPassword, model.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to seed administrator: %w", err)
		}
		logger.Info("Administrator seeded", "email", admin.Email)
	}

	addr := cfg.Sandbox.Addr
	if sandboxFlags.addr != "" {
		addr = sandboxFlags.addr
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           telemetry.WrapHandler(srv.Handler(), "sandbox"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Sandbox listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down sandbox")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func init() {
	rootCmd.AddCommand(sandboxCmd)
	sandboxCmd.Flags().StringVar(&sandboxFlags.addr, "addr", "", "listen address (default from sandbox.addr)")
	sandboxCmd.Flags().StringVar(&sandboxFlags.adminEmail, "admin-email", "", "seed an administrator with this email")
	sandboxCmd.Flags().StringVar(&sandboxFlags.adminPassword, "admin-password", "", "password of the seeded administrator")
}
