package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/marufkhan776/chillman/internal/controller"
	connInmemory "github.com/marufkhan776/chillman/internal/repository/connection/inmemory"
	roomInmemory "github.com/marufkhan776/chillman/internal/repository/room/inmemory"
	"github.com/marufkhan776/chillman/internal/service/room"
	"github.com/marufkhan776/chillman/pkg/ctxlogger"
	"github.com/marufkhan776/chillman/pkg/ratelimit"
	"github.com/marufkhan776/chillman/pkg/redisclient"
	"github.com/marufkhan776/chillman/pkg/ytvideodata"
)

type AppConfig struct {
	Host             string        `json:"host"`
	Port             int           `json:"port"`
	LogLevel         string        `json:"log_level"`
	RoomCodeLength   int           `json:"room_code_length"`
	RoomCodeRetries  int           `json:"room_code_retries"`
	RoomRetention    time.Duration `json:"room_retention"`
	ReaperInterval   time.Duration `json:"reaper_interval"`
	CreateRateLimit  int           `json:"create_rate_limit"`
	CreateRateWindow time.Duration `json:"create_rate_window"`
	VideoMetadata    bool          `json:"video_metadata"`
	TrustProxy       bool          `json:"trust_proxy"`
	RedisHost        string        `json:"redis_host"`
	RedisPort        int           `json:"redis_port"`
	RedisPassword    string        `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535")
	}
	if cfg.RoomCodeLength < 4 || cfg.RoomCodeLength > 32 {
		return fmt.Errorf("room code length must be between 4 and 32")
	}
	if cfg.RoomCodeRetries < 1 {
		return fmt.Errorf("room code retries must be greater than 0")
	}
	if cfg.RoomRetention < 0 {
		return fmt.Errorf("room retention must not be negative")
	}
	if cfg.ReaperInterval <= 0 {
		return fmt.Errorf("reaper interval must be greater than 0")
	}
	if cfg.CreateRateLimit < 1 {
		return fmt.Errorf("create rate limit must be greater than 0")
	}
	if cfg.CreateRateWindow <= 0 {
		return fmt.Errorf("create rate window must be greater than 0")
	}
	return nil
}

// videoDataGetter keeps a disabled lookup a nil interface rather than a typed nil.
type videoDataGetter interface {
	Get(ctx context.Context, videoId string) (*ytvideodata.VideoData, error)
}

// newHandler assembles repositories, the room service and the controller, and
// starts the background workers. They stop when ctx is done; the returned
// cleanup releases external clients.
func newHandler(ctx context.Context, cfg *AppConfig, logger *slog.Logger) (http.Handler, func(), error) {
	cleanup := func() {}

	var limiter ratelimit.Limiter
	if cfg.RedisHost != "" {
		rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		cleanup = func() { rc.Close() }
		limiter = ratelimit.NewRedisLimiter(rc, "create-room", cfg.CreateRateLimit, cfg.CreateRateWindow)
	} else {
		memLimiter := ratelimit.NewMemoryLimiter(cfg.CreateRateLimit, cfg.CreateRateWindow)
		go memLimiter.Run(ctx)
		limiter = memLimiter
	}

	var videoData videoDataGetter
	if cfg.VideoMetadata {
		videoData = ytvideodata.New(nil)
	}

	roomRepo := roomInmemory.NewRepo(&roomInmemory.Config{
		CodeLength: cfg.RoomCodeLength,
		MaxRetries: cfg.RoomCodeRetries,
	}, logger)
	connRepo := connInmemory.NewRepo(logger)
	roomService := room.NewService(roomRepo, connRepo, videoData, &room.Config{
		RoomRetention: cfg.RoomRetention,
	}, logger)

	go roomService.RunReaper(ctx, cfg.ReaperInterval)

	ctrl := controller.NewController(roomService, limiter, &controller.Config{
		TrustProxy: cfg.TrustProxy,
	}, logger)

	return ctrl.GetMux(), cleanup, nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	serverCtx, serverStopCtx := context.WithCancel(ctx)
	defer serverStopCtx()

	handler, cleanup, err := newHandler(serverCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: handler}

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-serverCtx.Done()

	return nil
}
