package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisStagingDB       int    `mapstructure:"REDIS_STAGING_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Stripe checkout.
	StripeKey        string `mapstructure:"STRIPE_KEY"`
	CheckoutSuccess  string `mapstructure:"STRIPE_SUCCESS_URL"`
	CheckoutCancel   string `mapstructure:"STRIPE_CANCEL_URL"`
	Currency         string `mapstructure:"CURRENCY"`
	CreditPriceCents int64  `mapstructure:"CREDIT_PRICE_CENTS"`

	// Booking rules.
	AcademyTimezone     string             `mapstructure:"ACADEMY_TIMEZONE"`
	MinAdvanceDays      int                `mapstructure:"MIN_ADVANCE_DAYS"`
	ServiceRates        map[string]float64 `mapstructure:"SERVICE_RATES"`
	DefaultServiceRate  float64            `mapstructure:"DEFAULT_SERVICE_RATE"`
	StagingTTL          time.Duration      `mapstructure:"STAGING_TTL"`
	VerifyTimeout       time.Duration      `mapstructure:"VERIFY_TIMEOUT"`
	VerifyRetryInterval time.Duration      `mapstructure:"VERIFY_RETRY_INTERVAL"`
	StagingPollTimeout  time.Duration      `mapstructure:"STAGING_POLL_TIMEOUT"`
	ReminderLead        time.Duration      `mapstructure:"REMINDER_LEAD"`

	// Firebase service account used for push notifications.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

var AppConfig Config

// DefaultServiceRates are the hourly credit rates used when SERVICE_RATES is not configured.
var DefaultServiceRates = map[string]float64{
	"private lesson":      1.0,
	"semi-private lesson": 0.75,
	"group clinic":        0.5,
	"cardio tennis":       0.5,
	"court rental":        0.25,
}

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "courtside")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_STAGING_DB", 0)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 1)
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("STRIPE_SUCCESS_URL", "courtside://checkout/success?session_id={CHECKOUT_SESSION_ID}")
	viper.SetDefault("STRIPE_CANCEL_URL", "courtside://checkout/cancel?session_id={CHECKOUT_SESSION_ID}&cancelled=true")
	viper.SetDefault("CURRENCY", "usd")
	viper.SetDefault("CREDIT_PRICE_CENTS", 4000)
	viper.SetDefault("ACADEMY_TIMEZONE", "America/New_York")
	viper.SetDefault("MIN_ADVANCE_DAYS", 7)
	viper.SetDefault("SERVICE_RATES", DefaultServiceRates)
	viper.SetDefault("DEFAULT_SERVICE_RATE", 1.0)
	viper.SetDefault("STAGING_TTL", 24*time.Hour)
	viper.SetDefault("VERIFY_TIMEOUT", 10*time.Second)
	viper.SetDefault("VERIFY_RETRY_INTERVAL", 500*time.Millisecond)
	viper.SetDefault("STAGING_POLL_TIMEOUT", 10*time.Second)
	viper.SetDefault("REMINDER_LEAD", 24*time.Hour)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location returns the academy's timezone, falling back to UTC when it cannot be loaded.
func Location() *time.Location {
	loc, err := time.LoadLocation(AppConfig.AcademyTimezone)
	if err != nil {
		log.Printf("invalid ACADEMY_TIMEZONE %q, using UTC: %v", AppConfig.AcademyTimezone, err)
		return time.UTC
	}
	return loc
}
