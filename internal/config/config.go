package config

import (
	"errors"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type BotConfig struct {
	TelegramToken   string
	TelegramDebug   bool
	BaseAdminChatID int64
	DatabaseURL     string

	// Значения по умолчанию для новых сотрудников
	DefaultRegion       string
	DefaultWeeklyHours  float64
	DefaultVacationDays float64

	// Значения по умолчанию для таблицы settings
	MaxDailyHours      float64
	MinBreak6h         int64
	MinBreak9h         int64
	AllowFutureEntries bool
	ArchiveDestination string
	ArchivePath        string

	ArchiveInterval time.Duration
	HolidaysJSON    string
}

var instance *BotConfig
var once sync.Once

// GetBotConfig загружает конфигурацию один раз за время жизни процесса
func GetBotConfig() *BotConfig {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Warnf("no .env file loaded: %s", err.Error())
		}

		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("invalid configuration: %s", err.Error())
		}
		instance = cfg
	})

	return instance
}

// Load читает конфигурацию из окружения без кеширования
func Load() (*BotConfig, error) {
	cfg := &BotConfig{
		TelegramToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramDebug:   getEnvAsBool("TELEGRAM_DEBUG", false),
		BaseAdminChatID: getEnvAsInt("BASE_ADMIN_CHAT_ID", 0),
		DatabaseURL:     getEnv("DATABASE_URL", "work_time.db"),

		DefaultRegion:       getEnv("DEFAULT_REGION", "BY"),
		DefaultWeeklyHours:  getEnvAsFloat("DEFAULT_WEEKLY_HOURS", 40),
		DefaultVacationDays: getEnvAsFloat("DEFAULT_VACATION_DAYS", 30),

		MaxDailyHours:      getEnvAsFloat("MAX_DAILY_HOURS", 10),
		MinBreak6h:         getEnvAsInt("MIN_BREAK_6H", 30),
		MinBreak9h:         getEnvAsInt("MIN_BREAK_9H", 45),
		AllowFutureEntries: getEnvAsBool("ALLOW_FUTURE_ENTRIES", false),
		ArchiveDestination: getEnv("ARCHIVE_DESTINATION", ""),
		ArchivePath:        getEnv("ARCHIVE_PATH", "archive"),

		ArchiveInterval: getEnvAsDuration("ARCHIVE_INTERVAL", 300*time.Second),
		HolidaysJSON:    getEnv("HOLIDAYS_JSON", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *BotConfig) Validate() error {
	if c.TelegramToken == "" {
		return errors.New("could not get bot token")
	}
	if c.DatabaseURL == "" {
		return errors.New("could not get db url")
	}
	if c.DefaultWeeklyHours <= 0 || c.DefaultWeeklyHours > 80 {
		return errors.New("DEFAULT_WEEKLY_HOURS must be in (0, 80]")
	}
	if c.MaxDailyHours <= 0 || c.MaxDailyHours > 24 {
		return errors.New("MAX_DAILY_HOURS must be in (0, 24]")
	}
	if c.MinBreak6h < 0 || c.MinBreak9h < 0 {
		return errors.New("break minutes must not be negative")
	}
	if c.ArchiveInterval <= 0 {
		return errors.New("ARCHIVE_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsFloat(name string, defaultVal float64) float64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseFloat(valStr, 64); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(name, "")
	if val, err := time.ParseDuration(valStr); err == nil {
		return val
	}
	// допускаем значение в секундах: ARCHIVE_INTERVAL=300
	if secs, err := strconv.Atoi(valStr); err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultVal
}
