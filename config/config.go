package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageTypeFile = "file"
	StorageTypeS3   = "s3"
	StorageTypeDB   = "db"
)

var (
	BIND_ADDRESS        = "0.0.0.0:3000"
	TLS_DOMAINS         = "" // e.g. "example.com,example2.com"
	DEBUG_MODE          = true
	LOG_LEVEL           = "info"
	LOG_PRETTY          = true
	STORAGE_TYPE        = StorageTypeFile // file, s3 or db
	DATA_DIR            = "./data"        // Used by the file storage, also the S3 key prefix if S3_PREFIX is empty
	IMAGES_DIR          = "./images"
	CATALOG_DOCUMENT    = "places.json"
	FAVOURITES_DOCUMENT = "user-places.json"
	CATALOG_CACHE_TTL   = 30 * time.Second // 0 disables the catalog cache
	PLACES_DELAY        = time.Duration(0) // Artificial latency for GET /places, handy to see loading states
	S3_BUCKET           = ""
	S3_PREFIX           = ""
	S3_REGION           = "us-east-1"
	S3_ENDPOINT         = ""                  // Custom endpoint for S3 compatible services (MinIO etc)
	S3_AUTH             = ""                  // "key:secret", falls back to the default AWS credential chain when empty
	MYSQL_DSN           = ""                  // MySQL will be used by the db storage if this is set
	SQLITE_FILE         = "favplaces.sqlite3" // SQLite will be used by the db storage if MYSQL_DSN is not configured
	// Client side
	API_URL        = "http://localhost:3000"
	CLIENT_TIMEOUT = 10 * time.Second
)

func init() {
	// A missing .env file is fine, the environment is used as is
	_ = godotenv.Load()

	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvString("LOG_LEVEL", &LOG_LEVEL)
	readEnvBool("LOG_PRETTY", &LOG_PRETTY)
	readEnvString("STORAGE_TYPE", &STORAGE_TYPE)
	readEnvString("DATA_DIR", &DATA_DIR)
	readEnvString("IMAGES_DIR", &IMAGES_DIR)
	readEnvString("CATALOG_DOCUMENT", &CATALOG_DOCUMENT)
	readEnvString("FAVOURITES_DOCUMENT", &FAVOURITES_DOCUMENT)
	readEnvDuration("CATALOG_CACHE_TTL", &CATALOG_CACHE_TTL)
	readEnvDuration("PLACES_DELAY", &PLACES_DELAY)
	readEnvString("S3_BUCKET", &S3_BUCKET)
	readEnvString("S3_PREFIX", &S3_PREFIX)
	readEnvString("S3_REGION", &S3_REGION)
	readEnvString("S3_ENDPOINT", &S3_ENDPOINT)
	readEnvString("S3_AUTH", &S3_AUTH)
	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvString("API_URL", &API_URL)
	readEnvDuration("CLIENT_TIMEOUT", &CLIENT_TIMEOUT)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = f
}

// readEnvDuration accepts Go durations ("1m30s") or a plain number of seconds
func readEnvDuration(name string, value *time.Duration) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*value = d
		return
	}
	var seconds int
	readEnvInt(name, &seconds)
	if seconds > 0 || v == "0" {
		*value = time.Duration(seconds) * time.Second
	}
}
