package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                 string
	Env                  string
	JWTSecret            string
	DBDriver             string
	DBPath               string
	DBDSN                string
	DBConnectRetries     int
	CORSOrigins          string
	ChainNetwork         string
	ChainNetworksFile    string
	ChainRPCURL          string
	PayrollContract      string
	ChainPrivateKey      string
	ChainCallTimeout     time.Duration
	ChainReceiptTimeout  time.Duration
	ChainNonceRetryDelay time.Duration
	RedisURL             string
	PayrollLockTTL       time.Duration
	SuperAdminRoleID     string
	HRAdminRoleID        string
	AuthzPolicyPath      string
}

var (
	AppConfig Config
)

func LoadConfig() {
	if err := LoadEnv(".env"); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	env := getEnvOrDefault("APP_ENV", "development")
	defaultNetwork := "localhost"
	if env == "production" {
		defaultNetwork = "mainnet"
	}

	AppConfig = Config{
		Port:                 getEnvOrDefault("PORT", "3000"),
		Env:                  env,
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		DBDriver:             getEnvOrDefault("DB_DRIVER", "sqlite"),
		DBPath:               getEnvOrDefault("DB_PATH", "payroll.db"),
		DBDSN:                os.Getenv("DB_DSN"),
		DBConnectRetries:     getEnvInt("DB_CONNECT_RETRIES", 5),
		CORSOrigins:          getEnvOrDefault("CORS_ORIGINS", "http://localhost:3001"),
		ChainNetwork:         getEnvOrDefault("CHAIN_NETWORK", defaultNetwork),
		ChainNetworksFile:    getEnvOrDefault("CHAIN_NETWORKS_FILE", "config/networks.yaml"),
		ChainRPCURL:          os.Getenv("CHAIN_RPC_URL"),
		PayrollContract:      getEnvOrDefault("PAYROLL_CONTRACT", "0x0000000000000000000000000000000000000000"),
		ChainPrivateKey:      strings.TrimPrefix(os.Getenv("CHAIN_PRIVATE_KEY"), "0x"),
		ChainCallTimeout:     getEnvDuration("CHAIN_CALL_TIMEOUT", 10*time.Second),
		ChainReceiptTimeout:  getEnvDuration("CHAIN_RECEIPT_TIMEOUT", 60*time.Second),
		ChainNonceRetryDelay: getEnvDuration("CHAIN_NONCE_RETRY_DELAY", 2*time.Second),
		RedisURL:             os.Getenv("REDIS_URL"),
		PayrollLockTTL:       getEnvDuration("PAYROLL_LOCK_TTL", 2*time.Minute),
		SuperAdminRoleID:     getEnvOrDefault("SUPER_ADMIN_ROLE_ID", "01926d2c-a8d1-7c3e-8f2a-1b3c4d5e6f7a"),
		HRAdminRoleID:        getEnvOrDefault("HR_ADMIN_ROLE_ID", "01926d2c-a8d1-7c3e-8f2a-1b3c4d5e6f7b"),
		AuthzPolicyPath:      os.Getenv("AUTHZ_POLICY_PATH"),
	}
}

func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Environment variable %s is required", key)
	}
	return value
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid integer for %s, using %d", key, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid duration for %s, using %s", key, defaultValue)
		return defaultValue
	}
	return parsed
}
