package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	v1 "github.com/canonical/sosreport-agent/api/v1"
	"github.com/canonical/sosreport-agent/internal/config"
	"github.com/canonical/sosreport-agent/internal/handlers"
	"github.com/canonical/sosreport-agent/internal/inventory"
	"github.com/canonical/sosreport-agent/internal/server"
	"github.com/canonical/sosreport-agent/internal/services"
	"github.com/canonical/sosreport-agent/internal/store"
	"github.com/canonical/sosreport-agent/internal/store/migrations"
	"github.com/canonical/sosreport-agent/internal/uploader"
)

func NewRunCommand(cfg *config.Configuration) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run agent",
		Example: `  # Run against a local controller, uploading over sftp
  sosd run --controller-endpoint 10.0.0.1:17070 --controller-username admin \
    --controller-password secret --controller-ca-cert /etc/sosd/ca.pem \
    --upload-server files.intake.example.com --upload-username cases --upload-password secret

  # Use a private key for the intake server and keep run history
  sosd run --controller-endpoint 10.0.0.1:17070 --controller-username admin \
    --controller-password secret --upload-server files.intake.example.com \
    --upload-username cases --upload-private-key /etc/sosd/intake_ed25519 \
    --data-folder /var/lib/sosd`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfiguration(cfg); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
			defer cancel()
			wg := sync.WaitGroup{}
			wg.Add(1)

			// init store
			dbPath := filepath.Join(cfg.Agent.DataFolder, "sosd.duckdb")
			if cfg.Agent.DataFolder == "" {
				dbPath = ":memory:"
				zap.S().Warn("data-folder not set, using in-memory run history (history will not persist)")
			}
			db, err := store.NewDB(dbPath)
			if err != nil {
				zap.S().Errorw("failed to initialize database", "error", err)
				return err
			}
			s := store.NewStore(db)
			defer s.Close()

			if err := migrations.Run(ctx, db); err != nil {
				zap.S().Errorw("failed to run migrations", "error", err)
				return err
			}

			// The upload method is validated here, before any network
			// activity: a typo fails the process at startup.
			up, err := uploader.New(cfg.Upload)
			if err != nil {
				return err
			}

			fs := afero.NewOsFs()
			resolver := services.NewResolver(cfg.Controller, inventory.Dial)
			collector := services.NewSosCollector(cfg.Sos, fs)
			cleaner := services.NewCleanupManager(fs)
			pipeline := services.NewPipeline(resolver, collector, up, cleaner, s, cfg.Controller.Model, cfg.Sos.CollectTimeout)

			h := handlers.New(pipeline)

			srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
				v1.RegisterHandlers(router, h)
			})
			if err != nil {
				zap.S().Errorw("failed to create http server", "error", err)
				return err
			}

			go func() {
				defer func() {
					wg.Done()
					cancel()
				}()
				zap.S().Infof("Starting HTTP server on port %d", cfg.Server.HTTPPort)

				if err := srv.Start(ctx); err != nil {
					if !errors.Is(err, http.ErrServerClosed) {
						zap.S().Errorw("failed to start http server", "error", err)
					}
				}
			}()

			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				srv.Stop(stopCtx)
			}()

			<-ctx.Done()
			wg.Wait()

			zap.S().Info("server shutdown")

			return nil
		},
	}

	registerFlags(runCmd, cfg)

	return runCmd
}

func registerFlags(cmd *cobra.Command, config *config.Configuration) {
	nfs := cobrautil.NewNamedFlagSets(cmd)

	serverFlagSet := nfs.FlagSet(color.New(color.FgBlue, color.Bold).Sprint("Server"))
	registerServerFlags(serverFlagSet, config)

	controllerFlagSet := nfs.FlagSet(color.New(color.FgBlue, color.Bold).Sprint("Controller"))
	registerControllerFlags(controllerFlagSet, config)

	sosFlagSet := nfs.FlagSet(color.New(color.FgBlue, color.Bold).Sprint("Sos"))
	registerSosFlags(sosFlagSet, config)

	uploadFlagSet := nfs.FlagSet(color.New(color.FgBlue, color.Bold).Sprint("Upload"))
	registerUploadFlags(uploadFlagSet, config)

	nfs.AddFlagSets(cmd)
}

func validateConfiguration(cfg *config.Configuration) error {
	switch cfg.Server.Mode {
	case config.ServerModeProd, config.ServerModeDev:
	default:
		return fmt.Errorf("invalid server mode %q: must be %q or %q", cfg.Server.Mode, config.ServerModeProd, config.ServerModeDev)
	}

	if cfg.Server.HTTPPort < 1 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http-port %d: must be between 1 and 65535", cfg.Server.HTTPPort)
	}

	if cfg.Controller.Endpoint == "" {
		return errors.New("controller-endpoint cannot be empty")
	}
	if cfg.Controller.Username == "" {
		return errors.New("controller-username cannot be empty")
	}

	if cfg.Upload.Server == "" {
		return errors.New("upload-server cannot be empty")
	}
	if cfg.Upload.Port < 1 || cfg.Upload.Port > 65535 {
		return fmt.Errorf("invalid upload-port %d: must be between 1 and 65535", cfg.Upload.Port)
	}

	return nil
}

func registerServerFlags(flagSet *pflag.FlagSet, config *config.Configuration) {
	flagSet.IntVar(&config.Server.HTTPPort, "server-http-port", config.Server.HTTPPort, "Port on which the HTTP server is listening")
	flagSet.StringVar(&config.Server.Mode, "server-mode", config.Server.Mode, "Server mode: either prod or dev")
	flagSet.StringVar(&config.Agent.DataFolder, "data-folder", config.Agent.DataFolder, "Path to the persistent run history folder")
}

func registerControllerFlags(flagSet *pflag.FlagSet, config *config.Configuration) {
	flagSet.StringVar(&config.Controller.Endpoint, "controller-endpoint", config.Controller.Endpoint, "Controller API endpoint (host:port)")
	flagSet.StringVar(&config.Controller.Username, "controller-username", config.Controller.Username, "Controller username")
	flagSet.StringVar(&config.Controller.Password, "controller-password", config.Controller.Password, "Controller password")
	flagSet.StringVar(&config.Controller.CACertFile, "controller-ca-cert", config.Controller.CACertFile, "Path of the controller CA certificate")
	flagSet.StringVar(&config.Controller.Model, "model-name", config.Controller.Model, "Default model to collect from when an action names none")
}

func registerSosFlags(flagSet *pflag.FlagSet, config *config.Configuration) {
	flagSet.StringVar(&config.Sos.Binary, "sos-binary", config.Sos.Binary, "Local sos executable")
	flagSet.StringVar(&config.Sos.Command, "sos-cmd", config.Sos.Command, "Sos command alias to run on the remote nodes")
	flagSet.StringVar(&config.Sos.TmpDir, "tmp-dir", config.Sos.TmpDir, "Directory where sos collect leaves the reports")
	flagSet.StringVar(&config.Sos.SSHUser, "ssh-user", config.Sos.SSHUser, "SSH user sos collect uses to reach the nodes")
	flagSet.DurationVar(&config.Sos.CollectTimeout, "collect-timeout", config.Sos.CollectTimeout, "Timeout for the sos collect process (0 = no timeout)")
}

func registerUploadFlags(flagSet *pflag.FlagSet, config *config.Configuration) {
	flagSet.StringVar(&config.Upload.Method, "upload-method", config.Upload.Method, "Upload method: sftp, scp or http (only sftp is implemented)")
	flagSet.StringVar(&config.Upload.Server, "upload-server", config.Upload.Server, "Intake server address")
	flagSet.IntVar(&config.Upload.Port, "upload-port", config.Upload.Port, "Intake server port")
	flagSet.StringVar(&config.Upload.Username, "upload-username", config.Upload.Username, "Intake server username")
	flagSet.StringVar(&config.Upload.Password, "upload-password", config.Upload.Password, "Intake server password")
	flagSet.StringVar(&config.Upload.PrivateKeyFile, "upload-private-key", config.Upload.PrivateKeyFile, "Path of the private key for the intake server (takes precedence over the password)")
}
