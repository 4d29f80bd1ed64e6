package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort      string
	MongoURL      string
	MongoDBName   string
	RedisURL      string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	FlagPrefix string

	RateLimitMaxAttempts     int
	RateLimitWindowSeconds   int
	RateLimitCooldownSeconds int

	ScoreboardTTLSeconds int
	ScoreboardTeamLimit  int
	ScoreboardUserLimit  int

	EventCacheTTLSeconds int

	TeamMaxMembers int
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
	config := Config{
		HTTPPort:      getEnv("HTTPPORT", "8080"),
		MongoURL:      getEnv("MONGOURL", "mongodb://localhost:27017"),
		MongoDBName:   getEnv("MONGODBNAME", "ctfquest"),
		RedisURL:      getEnv("REDISURL", "localhost:6379"),
		RedisPassword: getEnv("REDISPASSWORD", ""),
		RedisDB:       getEnvInt("REDISDB", 0),

		JWTSecret: getEnv("JWTSECRET", "secrettt"),

		FlagPrefix: getEnv("FLAGPREFIX", "flag"),

		RateLimitMaxAttempts:     getEnvInt("RATELIMITMAXATTEMPTS", 5),
		RateLimitWindowSeconds:   getEnvInt("RATELIMITWINDOWSECONDS", 60),
		RateLimitCooldownSeconds: getEnvInt("RATELIMITCOOLDOWNSECONDS", 30),

		ScoreboardTTLSeconds: getEnvInt("SCOREBOARDTTLSECONDS", 10),
		ScoreboardTeamLimit:  getEnvInt("SCOREBOARDTEAMLIMIT", 20),
		ScoreboardUserLimit:  getEnvInt("SCOREBOARDUSERLIMIT", 100),

		EventCacheTTLSeconds: getEnvInt("EVENTCACHETTLSECONDS", 3600),

		TeamMaxMembers: getEnvInt("TEAMMAXMEMBERS", 2),
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
