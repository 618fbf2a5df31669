package config

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	Port       string `yaml:"port"`
	APIBaseURL string `yaml:"api_base_url"` // backend that serves /register, /login, /password-reset/*

	AllowedEmailDomains []string      `yaml:"allowed_email_domains"` // registration email suffixes, "@" included
	RequestTimeout      time.Duration `yaml:"request_timeout"`

	ModalCloseDelay  time.Duration `yaml:"modal_close_delay"`  // registration modal closes this long after success
	ResetReturnDelay time.Duration `yaml:"reset_return_delay"` // back to login after a completed reset
	NotificationTTL  time.Duration `yaml:"notification_ttl"`
	ResetSessionTTL  time.Duration `yaml:"reset_session_ttl"` // lifetime of the forgot-password cookie

	SecureCookies         bool     `yaml:"secure_cookies"`
	CORSOrigins           []string `yaml:"cors_origins"`
	FormPostsPerMinute    float64  `yaml:"form_posts_per_minute"`    // per client IP, across all form posts
	AccountPostsPerMinute float64  `yaml:"account_posts_per_minute"` // per email, login and reset-code requests

	Notice string `yaml:"notice"` // markdown shown above the portal buttons

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

type Private struct {
	SessionKey string `yaml:"session_key"` // signs the forgot-password session cookie
}

func (c *Config) SessionKey() string {
	return c.private.SessionKey
}

func (c *Config) ResetSessionTTL() time.Duration {
	return c.Public.ResetSessionTTL
}

// Default returns a configuration that talks to a backend on localhost.
// The session key is left empty; MustLoad refuses to start without one.
func Default() *Config {
	return &Config{Public: defaultPublic()}
}

func defaultPublic() Public {
	return Public{
		Port:                  "8081",
		APIBaseURL:            "http://localhost:5000",
		AllowedEmailDomains:   []string{"@tbs.u-tunis.tn", "@gmail.com"},
		RequestTimeout:        15 * time.Second,
		ModalCloseDelay:       2 * time.Second,
		ResetReturnDelay:      2 * time.Second,
		NotificationTTL:       8 * time.Second,
		ResetSessionTTL:       10 * time.Minute,
		FormPostsPerMinute:    30,
		AccountPostsPerMinute: 10,
		LogLevel:              "info",
	}
}

func loadPath(configPath string, output interface{}) error {
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("can't read config file %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		return fmt.Errorf("can't unmarshal config file %s: %w", configPath, err)
	}
	return nil
}

// Load reads public.yaml (required) and private.yaml (optional) from
// configFolder, then applies environment overrides.
func Load(configFolder string) (*Config, error) {
	public := defaultPublic()
	if err := loadPath(path.Join(configFolder, "public.yaml"), &public); err != nil {
		return nil, err
	}

	var private Private
	privatePath := path.Join(configFolder, "private.yaml")
	if _, err := os.Stat(privatePath); err == nil {
		if err := loadPath(privatePath, &private); err != nil {
			return nil, err
		}
	}

	cfg := &Config{Public: public, private: private}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadPublic reads public.yaml and the environment only. Front ends that sign
// nothing, like the terminal client, need no private.yaml.
func LoadPublic(configFolder string) (Public, error) {
	public := defaultPublic()
	if err := loadPath(path.Join(configFolder, "public.yaml"), &public); err != nil {
		return Public{}, err
	}
	cfg := &Config{Public: public}
	cfg.applyEnv()
	if err := cfg.validatePublic(); err != nil {
		return Public{}, err
	}
	return cfg.Public, nil
}

func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORTAL_API_BASE_URL"); v != "" {
		c.Public.APIBaseURL = v
	}
	if v := os.Getenv("PORTAL_SESSION_KEY"); v != "" {
		c.private.SessionKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Public.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Public.LogLevel = v
	}
}

func (c *Config) validate() error {
	if c.private.SessionKey == "" {
		return fmt.Errorf("missing required config values: session_key")
	}
	return c.validatePublic()
}

func (c *Config) validatePublic() error {
	var missing []string
	if c.Public.APIBaseURL == "" {
		missing = append(missing, "api_base_url")
	}
	if len(c.Public.AllowedEmailDomains) == 0 {
		missing = append(missing, "allowed_email_domains")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config values: %s", strings.Join(missing, ", "))
	}
	for _, d := range c.Public.AllowedEmailDomains {
		if !strings.HasPrefix(d, "@") {
			return fmt.Errorf("allowed email domain %q must start with @", d)
		}
	}
	if c.Public.FormPostsPerMinute <= 0 {
		return fmt.Errorf("form_posts_per_minute must be positive, got %v", c.Public.FormPostsPerMinute)
	}
	if c.Public.AccountPostsPerMinute <= 0 {
		return fmt.Errorf("account_posts_per_minute must be positive, got %v", c.Public.AccountPostsPerMinute)
	}
	return nil
}
