package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"vetclinic-backend/routes"
	"vetclinic-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var printRoutesFlag bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the reminder scheduler",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer a.close()

		if a.cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		loc := a.cfg.Location()
		mailer := a.mailer()
		reminders := a.reminderService(mailer)

		r := routes.SetupRouter(routes.Deps{
			Config:       a.cfg,
			DB:           a.db,
			Log:          a.log,
			Appointments: services.NewAppointmentService(a.db, a.log, loc),
			Grooming:     services.NewGroomingService(a.db, a.log, loc),
			Patients:     services.NewPatientService(a.db, a.log, loc),
			Auth: services.NewAuthService(a.db, mailer, a.log, services.AuthConfig{
				JWTSecret:   a.cfg.JWTSecret,
				JWTExpiry:   a.cfg.JWTExpiry(),
				FrontendURL: a.cfg.FrontendURL,
			}),
			Reminders: reminders,
		})
		if printRoutesFlag {
			printRoutes(r)
		}

		if a.cfg.SchedulerEnabled {
			c, err := reminders.StartScheduler(ctx)
			if err != nil {
				return err
			}
			defer func() { <-c.Stop().Done() }()
			a.log.Info().Str("tz", loc.String()).Msg("reminder scheduler started")
		}

		srv := &http.Server{
			Addr:              ":" + a.cfg.Port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.log.Info().Str("port", a.cfg.Port).Msg("server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
		case <-ctx.Done():
		}

		a.log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&printRoutesFlag, "print-routes", false, "print the registered routes on startup")
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
