package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	HttpPort        int           `yaml:"http_port"`
	LogLevel        string        `yaml:"log_level"`
	LogJSON         bool          `yaml:"log_json"`
	SecureCookies   bool          `yaml:"secure_cookies"`
	CorsOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Graders         []string      `yaml:"graders"`          // usernames seeded with the GRADER role
	Threads         []string      `yaml:"threads"`          // registered in addition to the defaults
	MinPeersHelped  int           `yaml:"min_peers_helped"` // default threshold for /grading/helpers
	RateLimit       RateLimit     `yaml:"rate_limit"`
}

// RateLimit configures the per-user token buckets on content creation.
type RateLimit struct {
	PostsPerSecond   float64       `yaml:"posts_per_second"`
	RepliesPerSecond float64       `yaml:"replies_per_second"`
	Burst            float64       `yaml:"burst"`
	Expiration       time.Duration `yaml:"expiration"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
}

func (s *Config) JwtKey() string {
	return s.private.JwtKey
}

// New builds a config in code, mostly for tests.
func New(public Public, jwtKey string) *Config {
	public.setDefaults()
	return &Config{Public: public, private: Private{JwtKey: jwtKey}}
}

func (p *Public) setDefaults() {
	if p.HttpPort == 0 {
		p.HttpPort = 8080
	}
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.ShutdownTimeout == 0 {
		p.ShutdownTimeout = 10 * time.Second
	}
	if p.MinPeersHelped == 0 {
		p.MinPeersHelped = 3
	}
	if p.RateLimit.PostsPerSecond == 0 {
		p.RateLimit.PostsPerSecond = 0.2
	}
	if p.RateLimit.RepliesPerSecond == 0 {
		p.RateLimit.RepliesPerSecond = 1
	}
	if p.RateLimit.Burst == 0 {
		p.RateLimit.Burst = 1
	}
	if p.RateLimit.Expiration == 0 {
		p.RateLimit.Expiration = time.Hour
	}
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	public.setDefaults()

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	return &Config{public, private}
}
