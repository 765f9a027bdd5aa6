// Package config loads the environment-sourced settings spec §6 names,
// following the teacher's cmd/main.go pattern of defaults overridden by
// os.Getenv rather than a third-party config library (the teacher itself
// does not use one; see DESIGN.md).
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every environment-sourced setting the process needs.
type Config struct {
	RedisHost string
	RedisPort int

	GlassnodeAPIKey string

	MatrixHost     string
	MatrixUser     string
	MatrixPassword string

	MessageQueueURL string

	LogLevel string

	DeliveryInterval time.Duration

	RoomCachePath string

	AdminAddr string
	JWTSecret string

	DiskMountPoint string
}

// FromEnv reads every field from its documented environment variable,
// falling back to spec §6's defaults.
func FromEnv() Config {
	return Config{
		RedisHost: getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort: getEnvInt("REDIS_PORT", 6379),

		GlassnodeAPIKey: os.Getenv("GLASSNODE_API_KEY"),

		MatrixHost:     os.Getenv("MATRIX_HOST"),
		MatrixUser:     os.Getenv("MATRIX_USER"),
		MatrixPassword: os.Getenv("MATRIX_PASSWORD"),

		MessageQueueURL: os.Getenv("MESSAGE_QUEUE"),

		LogLevel: getEnv("LOG_LEVEL", "WARNING"),

		DeliveryInterval: time.Duration(getEnvInt("DELIVERY_INTERVAL", 5)) * time.Minute,

		RoomCachePath: getEnv("MATRIX_ROOM_CACHE", "state.json"),

		AdminAddr: getEnv("ADMIN_ADDR", ":8090"),
		JWTSecret: getEnv("JWT_SECRET", "sigalert-dev-secret-change-in-production"),

		DiskMountPoint: getEnv("DISK_MOUNT_POINT", "/"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
