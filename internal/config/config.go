// Application configuration loading
package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Models ModelsConfig `mapstructure:"models"`
	Upload UploadConfig `mapstructure:"upload"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type ModelsConfig struct {
	Dir           string `mapstructure:"dir"`
	FaceModel     string `mapstructure:"face_model"`
	SuperResModel string `mapstructure:"super_res_model"`
	MattingModel  string `mapstructure:"matting_model"`
	CascadeFile   string `mapstructure:"cascade_file"`
	Device        string `mapstructure:"device"`
	Threads       int    `mapstructure:"threads"`
	LibraryPath   string `mapstructure:"library_path"`
}

type UploadConfig struct {
	MaxSizeMB int64 `mapstructure:"max_size_mb"`
}

// LoadConfig reads config/config.yaml when present and falls back to
// defaults otherwise
func LoadConfig() (*viper.Viper, error) {
	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.AddConfigPath(".")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	setDefaults(viperInstance)

	if err := viperInstance.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config

	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Model defaults
	v.SetDefault("models.dir", "models")
	v.SetDefault("models.face_model", "gfpgan.onnx")
	v.SetDefault("models.super_res_model", "realesrgan_x4plus.onnx")
	v.SetDefault("models.matting_model", "u2net.onnx")
	v.SetDefault("models.cascade_file", "haarcascade_frontalface_default.xml")
	v.SetDefault("models.device", "auto")
	v.SetDefault("models.threads", 0)
	v.SetDefault("models.library_path", "")

	// Upload defaults
	v.SetDefault("upload.max_size_mb", 32)
}

// Address returns the host:port the server binds to
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

// MaxUploadBytes returns the upload size cap in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.Upload.MaxSizeMB << 20
}

// GetEnv reads an environment variable with a fallback value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
