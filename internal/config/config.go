package config

import "fmt"

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// RedditConfig holds Reddit API credentials. With an empty ClientID the
// scanner falls back to the public JSON endpoints.
type RedditConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	UserAgent    string `mapstructure:"user_agent"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// URL renders the connection string for pgx.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", c.User, c.Password, c.Host, c.Port, c.Name)
}

// RedisConfig holds redis connection settings for the seen-cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SlackConfig holds Slack bot settings.
type SlackConfig struct {
	BotToken      string `mapstructure:"bot_token"`
	ChannelID     string `mapstructure:"channel_id"`
	SigningSecret string `mapstructure:"signing_secret"`
	ListenAddr    string `mapstructure:"listen_addr"`
}

// OpenAIConfig holds settings for the AI enricher.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// ScannerConfig controls scan behavior.
type ScannerConfig struct {
	Subreddits        []string `mapstructure:"subreddits"`
	MaxPostsPerSub    int      `mapstructure:"max_posts_per_subreddit"`
	MinRelevanceScore float64  `mapstructure:"min_relevance_score"`
	PostMaxAgeHours   float64  `mapstructure:"post_max_age_hours"`
	ScanInterval      string   `mapstructure:"scan_interval"` // duration string, e.g., "30m"
	ExpireAfterHours  int      `mapstructure:"expire_after_hours"`
	MaxNotifications  int      `mapstructure:"max_notifications"`
	KeywordsFile      string   `mapstructure:"keywords_file"`
	BonusCategory     string   `mapstructure:"bonus_category"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Reddit   RedditConfig   `mapstructure:"reddit"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Slack    SlackConfig    `mapstructure:"slack"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Scanner  ScannerConfig  `mapstructure:"scanner"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Reddit.UserAgent == "" {
		c.Reddit.UserAgent = "dealscout/1.0"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.Name == "" {
		c.Database.Name = "dealscout"
	}
	if c.Database.User == "" {
		c.Database.User = "postgres"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Slack.ListenAddr == "" {
		c.Slack.ListenAddr = ":8080"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if len(c.Scanner.Subreddits) == 0 {
		c.Scanner.Subreddits = DefaultSubreddits()
	}
	if c.Scanner.MaxPostsPerSub == 0 {
		c.Scanner.MaxPostsPerSub = 25
	}
	if c.Scanner.MinRelevanceScore == 0 {
		c.Scanner.MinRelevanceScore = 0.6
	}
	if c.Scanner.PostMaxAgeHours == 0 {
		c.Scanner.PostMaxAgeHours = 24
	}
	if c.Scanner.ScanInterval == "" {
		c.Scanner.ScanInterval = "30m"
	}
	if c.Scanner.ExpireAfterHours == 0 {
		c.Scanner.ExpireAfterHours = 48
	}
	if c.Scanner.MaxNotifications == 0 {
		c.Scanner.MaxNotifications = 10
	}
	if c.Scanner.BonusCategory == "" {
		c.Scanner.BonusCategory = "miami_specific"
	}
}

// DefaultSubreddits returns the target subreddit list for Florida
// wholesale real estate.
func DefaultSubreddits() []string {
	return []string{
		// Primary - high intent wholesale/investing
		"WholesaleRealestate",
		"wholesaling",
		"realestateinvesting",
		"flipping",
		// General real estate
		"RealEstate",
		"CommercialRealEstate",
		// Florida specific
		"FloridaRealEstate",
		"florida",
		"Miami",
		"tampa",
		"orlando",
		"jacksonville",
	}
}
