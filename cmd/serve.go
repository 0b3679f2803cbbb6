package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/controller"
	"github.com/vibast-solutions/ms-go-mood-journal/app/middleware"
	"github.com/vibast-solutions/ms-go-mood-journal/app/notification"
	"github.com/vibast-solutions/ms-go-mood-journal/app/repository"
	"github.com/vibast-solutions/ms-go-mood-journal/app/service"
	"github.com/vibast-solutions/ms-go-mood-journal/app/token"
	"github.com/vibast-solutions/ms-go-mood-journal/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	sessionCleanupInterval = 10 * time.Minute
	shutdownTimeout        = 15 * time.Second
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP (Echo) server for the mood journal service.`,
	Run:   runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply pending MySQL migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

type application struct {
	accounts *service.AccountService
	sessions *service.SessionService
	moods    *service.MoodService
}

func newApplication(cfg *config.Config, b *backend, mailOpts ...notification.Option) *application {
	codec := token.NewCodec(cfg.App.SecretKey)
	sessions := service.NewSessionService(b.sessions, codec, cfg.Session.TTL)
	accounts := service.NewAccountService(
		b.users,
		service.NewBcryptHasher(cfg.Password.BcryptCost),
		codec,
		notification.NewFromConfig(cfg.Mail, mailOpts...),
		sessions,
		cfg,
	)

	return &application{
		accounts: accounts,
		sessions: sessions,
		moods:    service.NewMoodService(b.moods),
	}
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}
	if !cfg.Mail.HasMailTransport() {
		logrus.Warn("No mail transport configured; verification and reset emails will not be sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open storage")
	}
	defer b.Close()

	if autoMigrate && b.db != nil {
		if err := repository.Migrate(ctx, b.db, "up"); err != nil {
			logrus.WithError(err).Fatal("Failed to apply migrations")
		}
	}

	// mail still in flight at shutdown is waited for
	var pendingMail sync.WaitGroup
	app := newApplication(cfg, b, notification.WithAsyncRunner(func(task func()) {
		pendingMail.Add(1)
		go func() {
			defer pendingMail.Done()
			task()
		}()
	}))

	go app.sessions.RunCleanup(ctx, sessionCleanupInterval)

	startHTTPServer(ctx, cfg, app, b.ping)
	pendingMail.Wait()
	logrus.Info("Server stopped")
}

func startHTTPServer(ctx context.Context, cfg *config.Config, app *application, ping controller.Pinger) {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	controller.RegisterRoutes(e, controller.Controllers{
		Auth:    controller.NewAuthController(app.accounts, cfg.Session),
		Profile: controller.NewProfileController(app.accounts),
		Mood:    controller.NewMoodController(app.moods, app.accounts),
		Health:  controller.NewHealthController(ping),
	}, middleware.NewAuthMiddleware(app.sessions, cfg.Session.CookieName))

	httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
	go func() {
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Failed to shut down HTTP server")
	}
}
