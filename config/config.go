package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

// Environment variable overriding the configured backend base URL,
// so a deployment can repoint the client without editing files.
const ENV_BACKEND_BASE_URL = "TANISHGPT_BACKEND_URL"

type AppConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Backend BackendConfig `yaml:"backend"`
	Chat    ChatConfig    `yaml:"chat"`
	Upload  UploadConfig  `yaml:"upload"`
	WebUI   WebUIConfig   `yaml:"webui"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// BackendConfig points the client at the TanishGPT backend service.
// ChatTimeoutSeconds is separate from TimeoutSeconds because a chat
// completion can take far longer than a session CRUD call.
type BackendConfig struct {
	BaseURL            string `yaml:"base_url" validate:"required,url"`
	TimeoutSeconds     int    `yaml:"timeout_seconds" validate:"gte=0"`
	ChatTimeoutSeconds int    `yaml:"chat_timeout_seconds" validate:"gte=0"`
}

// ChatConfig holds client-side defaults forwarded to the backend.
// TopN and DeepTopN are retrieval result-count hints; the retrieval
// algorithm itself is opaque to this client.
type ChatConfig struct {
	TopN     int `yaml:"top_n" validate:"gte=1"`
	DeepTopN int `yaml:"deep_top_n" validate:"gte=1"`
}

type UploadConfig struct {
	// AllowedExtensions are lowercase, without the leading dot.
	AllowedExtensions []string `yaml:"allowed_extensions" validate:"min=1"`
}

type WebUIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

func (c BackendConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c BackendConfig) ChatTimeout() time.Duration {
	if c.ChatTimeoutSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.ChatTimeoutSeconds) * time.Second
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	config = c
}

// Parse decodes and validates a raw config.yaml payload. Split out of
// InitApp so tests can feed fixtures without touching the filesystem.
func Parse(data []byte) (*AppConfig, error) {
	var c AppConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	applyDefaults(&c)

	if err := validator.New().Struct(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func applyDefaults(c *AppConfig) {
	if env := os.Getenv(ENV_BACKEND_BASE_URL); env != "" {
		c.Backend.BaseURL = env
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Chat.TopN == 0 {
		c.Chat.TopN = 3
	}
	if c.Chat.DeepTopN == 0 {
		c.Chat.DeepTopN = 5
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		c.Upload.AllowedExtensions = []string{"pdf", "docx", "txt", "md"}
	}
	if c.WebUI.ListenAddr == "" {
		c.WebUI.ListenAddr = ":8090"
	}
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
