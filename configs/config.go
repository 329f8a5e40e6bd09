package config

import (
	"time"

	"github.com/spf13/viper"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

// Enabled reports whether uploads can go to R2. Without it images are kept inline.
func (r R2) Enabled() bool {
	return r.AccountID != "" && r.AccessKey != "" && r.SecretKey != "" && r.BucketName != ""
}

type Twitter struct {
	APIKey    string
	APISecret string
	APIURL    string
	UploadURL string
}

type Graph struct {
	FacebookURL  string
	InstagramURL string
	Version      string
}

type Scheduler struct {
	Interval    time.Duration
	Concurrency int
	LockTTL     time.Duration
}

type Platform struct {
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

type Config struct {
	Port         string
	MongoURI     string
	DatabaseName string
	PostgresURI  string
	RedisURI     string
	FrontendURL  string
	SecretKey    string
	CookieName   string
	LogLevel     string
	LinkedInURL  string
	R2           R2
	Twitter      Twitter
	Graph        Graph
	Scheduler    Scheduler
	Platform     Platform
}

func LoadConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Port:         v.GetString("PORT"),
		MongoURI:     v.GetString("MONGO_URI"),
		DatabaseName: v.GetString("DATABASE_NAME"),
		PostgresURI:  v.GetString("POSTGRES_URI"),
		RedisURI:     v.GetString("REDIS_URI"),
		FrontendURL:  v.GetString("FRONTEND_URL"),
		SecretKey:    v.GetString("SECRET_KEY"),
		CookieName:   v.GetString("COOKIE_NAME"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		LinkedInURL:  v.GetString("LINKEDIN_API_URL"),
		R2: R2{
			AccountID:  v.GetString("R2_ACCOUNT_ID"),
			AccessKey:  v.GetString("R2_ACCESS_KEY"),
			SecretKey:  v.GetString("R2_SECRET_KEY"),
			BucketName: v.GetString("R2_BUCKET_NAME"),
			PublicURL:  v.GetString("R2_PUBLIC_URL"),
		},
		Twitter: Twitter{
			APIKey:    v.GetString("TWITTER_API_KEY"),
			APISecret: v.GetString("TWITTER_API_SECRET"),
			APIURL:    v.GetString("TWITTER_API_URL"),
			UploadURL: v.GetString("TWITTER_UPLOAD_URL"),
		},
		Graph: Graph{
			FacebookURL:  v.GetString("FACEBOOK_GRAPH_URL"),
			InstagramURL: v.GetString("INSTAGRAM_GRAPH_URL"),
			Version:      v.GetString("GRAPH_API_VERSION"),
		},
		Scheduler: Scheduler{
			Interval:    v.GetDuration("SCHEDULER_INTERVAL"),
			Concurrency: v.GetInt("SCHEDULER_CONCURRENCY"),
			LockTTL:     v.GetDuration("SCHEDULER_LOCK_TTL"),
		},
		Platform: Platform{
			Timeout:       v.GetDuration("PLATFORM_TIMEOUT"),
			RatePerSecond: v.GetFloat64("PLATFORM_RATE_PER_SECOND"),
			Burst:         v.GetInt("PLATFORM_BURST"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "smm_app")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("COOKIE_NAME", "postflow_session")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LINKEDIN_API_URL", "https://api.linkedin.com")
	v.SetDefault("TWITTER_API_URL", "https://api.twitter.com")
	v.SetDefault("TWITTER_UPLOAD_URL", "https://upload.twitter.com")
	v.SetDefault("FACEBOOK_GRAPH_URL", "https://graph.facebook.com")
	v.SetDefault("INSTAGRAM_GRAPH_URL", "https://graph.instagram.com")
	v.SetDefault("GRAPH_API_VERSION", "v18.0")
	v.SetDefault("SCHEDULER_INTERVAL", time.Minute)
	v.SetDefault("SCHEDULER_CONCURRENCY", 5)
	v.SetDefault("SCHEDULER_LOCK_TTL", 55*time.Second)
	v.SetDefault("PLATFORM_TIMEOUT", 30*time.Second)
	v.SetDefault("PLATFORM_RATE_PER_SECOND", 5.0)
	v.SetDefault("PLATFORM_BURST", 5)
}
