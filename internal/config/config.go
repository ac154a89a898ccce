package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	SourceDevice = "device"
	SourceFile   = "file"
	SourceUDP    = "udp"

	DisplayWindow  = "window"
	DisplayPreview = "preview"
)

type Config struct {
	CameraSource     string `validate:"oneof=device file udp"`
	CameraDevice     int    `validate:"min=0"`
	CameraFile       string `validate:"required_if=CameraSource file"`
	CameraUDPPort    int    `validate:"min=1,max=65535"`
	// CameraUDPIdleSec ends the UDP stream after this many seconds without a packet.
	CameraUDPIdleSec int    `validate:"min=1"`
	CascadeDir       string `validate:"required"`
	WindowTitle      string `validate:"required"`
	QuitKey          string `validate:"len=1,ascii"` // compared as a single byte
	KeyWaitMillis    int    `validate:"min=1"`       // 0 would make WaitKey block forever
	DisplayMode      string `validate:"oneof=window preview"`
	PreviewPort      int    `validate:"min=1,max=65535"`
	SessionDB        string // empty disables the session journal
	LogDirectory     string `validate:"required"`
	LogLevel         string `validate:"oneof=debug info warning error"`
}

// Load reads the configuration from the environment, honouring a local .env file.
func Load() *Config {
	// A missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	return &Config{
		CameraSource:     getEnv("CAMERA_SOURCE", SourceDevice),
		CameraDevice:     getEnvAsInt("CAMERA_DEVICE", 0),
		CameraFile:       getEnv("CAMERA_FILE", ""),
		CameraUDPPort:    getEnvAsInt("CAMERA_UDP_PORT", 5000),
		CameraUDPIdleSec: getEnvAsInt("CAMERA_UDP_IDLE_SEC", 10),
		CascadeDir:       getEnv("CASCADE_DIR", filepath.Join(".", "haarcascades")),
		WindowTitle:      getEnv("WINDOW_TITLE", "Face Scanner"),
		QuitKey:          getEnv("QUIT_KEY", "q"),
		KeyWaitMillis:    getEnvAsInt("KEY_WAIT_MS", 1),
		DisplayMode:      getEnv("DISPLAY_MODE", DisplayWindow),
		PreviewPort:      getEnvAsInt("PREVIEW_PORT", 8080),
		SessionDB:        getEnv("SESSION_DB", ""),
		LogDirectory:     getEnv("LOG_DIR", filepath.Join(".", "logs")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks field constraints declared in the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SourceName describes the configured frame source for logs and the session journal.
func (c *Config) SourceName() string {
	switch c.CameraSource {
	case SourceFile:
		return "file:" + c.CameraFile
	case SourceUDP:
		return "udp:" + strconv.Itoa(c.CameraUDPPort)
	default:
		return "device:" + strconv.Itoa(c.CameraDevice)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
