package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/marufkhan776/chillman/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 10000,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	roomCodeLength = configVar[int]{
		envKey:       "SERVER_ROOM_CODE_LENGTH",
		flagKey:      "room-code-length",
		defaultValue: 6,
	}
	roomCodeRetries = configVar[int]{
		envKey:       "SERVER_ROOM_CODE_RETRIES",
		flagKey:      "room-code-retries",
		defaultValue: 10,
	}
	roomRetention = configVar[time.Duration]{
		envKey:       "SERVER_ROOM_RETENTION",
		flagKey:      "room-retention",
		defaultValue: 10 * time.Minute,
	}
	reaperInterval = configVar[time.Duration]{
		envKey:       "SERVER_REAPER_INTERVAL",
		flagKey:      "reaper-interval",
		defaultValue: time.Minute,
	}
	createRateLimit = configVar[int]{
		envKey:       "SERVER_CREATE_RATE_LIMIT",
		flagKey:      "create-rate-limit",
		defaultValue: 10,
	}
	createRateWindow = configVar[time.Duration]{
		envKey:       "SERVER_CREATE_RATE_WINDOW",
		flagKey:      "create-rate-window",
		defaultValue: time.Minute,
	}
	videoMetadata = configVar[bool]{
		envKey:       "SERVER_VIDEO_METADATA",
		flagKey:      "video-metadata",
		defaultValue: false,
	}
	trustProxy = configVar[bool]{
		envKey:       "SERVER_TRUST_PROXY",
		flagKey:      "trust-proxy",
		defaultValue: false,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func bind[T any](v configVar[T]) {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Int(roomCodeLength.flagKey, roomCodeLength.defaultValue, "Length of generated room codes")
	pflag.Int(roomCodeRetries.flagKey, roomCodeRetries.defaultValue, "Room code collision retries before falling back to a suffixed code")
	pflag.Duration(roomRetention.flagKey, roomRetention.defaultValue, "How long a room without members is kept")
	pflag.Duration(reaperInterval.flagKey, reaperInterval.defaultValue, "How often idle rooms are swept")
	pflag.Int(createRateLimit.flagKey, createRateLimit.defaultValue, "Rooms one address may create per window")
	pflag.Duration(createRateWindow.flagKey, createRateWindow.defaultValue, "Room creation rate limit window")
	pflag.Bool(videoMetadata.flagKey, videoMetadata.defaultValue, "Look up YouTube video titles")
	pflag.Bool(trustProxy.flagKey, trustProxy.defaultValue, "Take client addresses from X-Forwarded-For / X-Real-IP")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host, empty keeps the rate limiter in memory")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	bind(port)
	bind(host)
	bind(logLevel)
	bind(roomCodeLength)
	bind(roomCodeRetries)
	bind(roomRetention)
	bind(reaperInterval)
	bind(createRateLimit)
	bind(createRateWindow)
	bind(videoMetadata)
	bind(trustProxy)
	bind(redisPort)
	bind(redisHost)
	bind(redisPassword)

	config := &app.AppConfig{
		Host:             viper.GetString(host.flagKey),
		Port:             viper.GetInt(port.flagKey),
		LogLevel:         viper.GetString(logLevel.flagKey),
		RoomCodeLength:   viper.GetInt(roomCodeLength.flagKey),
		RoomCodeRetries:  viper.GetInt(roomCodeRetries.flagKey),
		RoomRetention:    viper.GetDuration(roomRetention.flagKey),
		ReaperInterval:   viper.GetDuration(reaperInterval.flagKey),
		CreateRateLimit:  viper.GetInt(createRateLimit.flagKey),
		CreateRateWindow: viper.GetDuration(createRateWindow.flagKey),
		VideoMetadata:    viper.GetBool(videoMetadata.flagKey),
		TrustProxy:       viper.GetBool(trustProxy.flagKey),
		RedisHost:        viper.GetString(redisHost.flagKey),
		RedisPort:        viper.GetInt(redisPort.flagKey),
		RedisPassword:    viper.GetString(redisPassword.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	// a missing .env is fine, the environment and flags still apply
	_ = godotenv.Load()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
