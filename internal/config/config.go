package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Components receive the struct (or the fields
// they need) at construction time; nothing reads the environment after
// startup except the Redis and AMQP constructors, which manage their own
// endpoints.
type Config struct {
    Env         string // application environment (e.g. "dev", "prod")
    Port        string // HTTP port to listen on
    AccessCode  string // shared admin access code checked at login
    JWTSecret   string // secret used to sign session JWTs
    TokenTTLMin int    // session token time‑to‑live in minutes

    StoreDriver  string // product store backend: "file" or "mysql"
    ProductsFile string // path of the JSON collection file (file driver)
    DBUser       string // database username (mysql driver)
    DBPass       string // database password (optional)
    DBHost       string // database host address
    DBPort       string // database port number
    DBName       string // database name

    StorageDriver string // image storage backend: "local" or "s3"
    UploadDir     string // directory for locally stored images (local driver)
    S3Endpoint    string // S3/MinIO endpoint host:port (s3 driver)
    S3AccessKey   string // S3 access key
    S3SecretKey   string // S3 secret key
    S3Bucket      string // bucket holding product images
    S3UseSSL      bool   // connect to the object store over TLS
    S3PublicURL   string // public base URL for stored objects (defaults to the endpoint)

    CacheTTLSec     int  // product list cache TTL in seconds (0 disables caching)
    CleanupConsumer bool // run the orphaned-image diagnostics consumer
}

// Load reads configuration values from environment variables and returns a
// Config.  The two secrets the service cannot run without are enforced by
// must(); everything else falls back to development defaults so the file
// backed variant runs with no environment at all beyond the secrets.
func Load() Config {
    return Config{
        Env:         getenv("APP_ENV", "dev"),
        Port:        getenv("APP_PORT", "3000"),
        AccessCode:  must("ACCESS_CODE"), // shared login code, compared verbatim
        JWTSecret:   must("JWT_SECRET"),  // HS256 signing secret
        TokenTTLMin: atoiDefault(getenv("TOKEN_TTL_MIN", "60"), 60),

        StoreDriver:  getenv("STORE_DRIVER", "file"),
        ProductsFile: getenv("PRODUCTS_FILE", "products.json"),
        DBUser:       os.Getenv("DB_USER"),
        DBPass:       os.Getenv("DB_PASS"),
        DBHost:       getenv("DB_HOST", "localhost"),
        DBPort:       getenv("DB_PORT", "3306"),
        DBName:       os.Getenv("DB_NAME"),

        StorageDriver: getenv("STORAGE_DRIVER", "local"),
        UploadDir:     getenv("UPLOAD_DIR", "public/uploads"),
        S3Endpoint:    os.Getenv("S3_ENDPOINT"),
        S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
        S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
        S3Bucket:      getenv("S3_BUCKET", "umkm-katalog"),
        S3UseSSL:      boolenv("S3_USE_SSL"),
        S3PublicURL:   os.Getenv("S3_PUBLIC_URL"),

        CacheTTLSec:     atoiDefault(getenv("CACHE_TTL_SEC", "30"), 30),
        CleanupConsumer: boolenv("CLEANUP_CONSUMER"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// getenv returns the value of an environment variable or a default when the
// variable is unset or empty.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// atoiDefault converts s to an int, falling back to def on any parse error.
func atoiDefault(s string, def int) int {
    n, err := strconv.Atoi(s)
    if err != nil {
        return def
    }
    return n
}

// boolenv reports whether the named variable is set to "true" or "1".
func boolenv(key string) bool {
    v := os.Getenv(key)
    return v == "true" || v == "1"
}
