package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
	DriverMongo  = "mongo"
)

type Env struct {
	AppAddr  string
	GinMode  string
	LogLevel zerolog.Level

	StoreDriver   string
	MySQLDSN      string
	MongoURI      string
	MongoDatabase string

	CORSOrigins []string
	RouteLimit  int
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	level, err := zerolog.ParseLevel(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER")))
	switch driver {
	case DriverMySQL, DriverMongo:
	default:
		driver = DriverMemory
	}

	dsn := strings.TrimSpace(os.Getenv("MYSQL_DSN"))
	if dsn == "" {
		dsn = "root:@tcp(127.0.0.1:3306)/jsonapi?parseTime=true&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
	}
	mongoURI := strings.TrimSpace(os.Getenv("MONGO_URI"))
	if mongoURI == "" {
		mongoURI = "mongodb://127.0.0.1:27017"
	}
	mongoDB := strings.TrimSpace(os.Getenv("MONGO_DATABASE"))
	if mongoDB == "" {
		mongoDB = "jsonapi"
	}

	limit, err := strconv.Atoi(strings.TrimSpace(os.Getenv("ROUTE_LIMIT")))
	if err != nil || limit <= 0 {
		limit = 20
	}

	return Env{
		AppAddr:       appAddr,
		GinMode:       strings.TrimSpace(os.Getenv("GIN_MODE")),
		LogLevel:      level,
		StoreDriver:   driver,
		MySQLDSN:      dsn,
		MongoURI:      mongoURI,
		MongoDatabase: mongoDB,
		CORSOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		RouteLimit:    limit,
	}
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
