package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string

	// Report data store: "mongo" reuses MongoURI/DBName, SQL drivers use DatastoreDSN.
	DatastoreDriver string
	DatastoreDSN    string

	ReportDefaultLimit   int
	ReportMaxLimit       int
	ReportCurrencySymbol string
	ReportDateLayout     string
	ReportDateFallback   string

	PreferencesBackend string // mongo | redis
	RedisAddr          string
	RedisPassword      string
	RedisDB            int

	ExportSink string // fs | s3
	FSPath     string // directory for scheduled exports
	S3Bucket   string
	S3Region   string
	S3Prefix   string
	// optional; the default AWS credential chain is used when empty
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "go-contractor"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "go-contractor"),

		DatastoreDriver: getEnv("DATASTORE_DRIVER", "mongo"),
		DatastoreDSN:    getEnv("DATASTORE_DSN", ""),

		ReportDefaultLimit:   getEnvInt("REPORT_DEFAULT_LIMIT", 500),
		ReportMaxLimit:       getEnvInt("REPORT_MAX_LIMIT", 10000),
		ReportCurrencySymbol: getEnv("REPORT_CURRENCY_SYMBOL", "$"),
		ReportDateLayout:     getEnv("REPORT_DATE_LAYOUT", "Jan 02, 2006"),
		ReportDateFallback:   getEnv("REPORT_DATE_FALLBACK", "blank"),

		PreferencesBackend: getEnv("PREFERENCES_BACKEND", "mongo"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),

		ExportSink: getEnv("EXPORT_SINK", "fs"),
		FSPath:     getEnv("FS_PATH", "./exports"),
		S3Bucket:   getEnv("S3_BUCKET", ""),
		S3Region:   getEnv("S3_REGION", "us-east-1"),
		S3Prefix:   getEnv("S3_PREFIX", "reports/"),

		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s, using %d", key, fallback)
		return fallback
	}
	return n
}
