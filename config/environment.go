package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andrewpaige1/eduengage-api/pathway"
	"github.com/andrewpaige1/eduengage-api/synthesis"
)

type Environment struct {
	Name          string
	IsDevelopment bool

	HTTP     HTTPConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Layout   pathway.LayoutConfig
	Radial   synthesis.RadialConfig
	Spark    SparkConfig
	Graph    GraphConfig
	Redis    RedisConfig
	Log      LogConfig
}

type HTTPConfig struct {
	Port            string
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver string // postgres|sqlite
	URL    string
}

// AuthConfig selects token validation: RS256 against the Auth0 JWKS when Domain
// is set, otherwise HS256 with Secret.
type AuthConfig struct {
	Domain   string
	Audience string
	Issuer   string
	Secret   string
}

type SparkConfig struct {
	Chance float64
	Linger time.Duration
}

type GraphConfig struct {
	URI      string
	Database string
	Username string
	Password string
}

type RedisConfig struct {
	Addr    string
	Channel string
}

type LogConfig struct {
	Mode  string
	Level string
}

// Load reads the environment. An unset APP_ENV is treated as production; only
// "development" and "test" get the local signing secret when no auth is configured.
func Load() (Environment, error) {
	name := strings.ToLower(valueOrDefault("APP_ENV", "production"))
	env := Environment{
		Name:          name,
		IsDevelopment: name == "development" || name == "test",
		HTTP: HTTPConfig{
			Port: valueOrDefault("PORT", "8080"),
			AllowedOrigins: splitCSV(valueOrDefault("CORS_ALLOWED_ORIGINS",
				"http://localhost:3000")),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(valueOrDefault("DB_DRIVER", "sqlite")),
			URL:    valueOrDefault("DB_URL", "eduengage.db"),
		},
		Auth: AuthConfig{
			Domain:   os.Getenv("AUTH0_DOMAIN"),
			Audience: valueOrDefault("AUTH0_AUDIENCE", "eduengage-api"),
			Issuer:   valueOrDefault("JWT_ISSUER", "eduengage-local"),
			Secret:   os.Getenv("JWT_SECRET_KEY"),
		},
		Layout: pathway.DefaultLayoutConfig(),
		Radial: synthesis.DefaultRadialConfig(),
		Spark: SparkConfig{
			Chance: pathway.DefaultSparkChance,
			Linger: pathway.DefaultSparkLinger,
		},
		Graph: GraphConfig{
			URI:      os.Getenv("NEO4J_URI"),
			Database: os.Getenv("NEO4J_DATABASE"),
			Username: valueOrDefault("NEO4J_USER", "neo4j"),
			Password: os.Getenv("NEO4J_PASSWORD"),
		},
		Redis: RedisConfig{
			Addr:    os.Getenv("REDIS_ADDR"),
			Channel: valueOrDefault("REDIS_CHANNEL", "pathway-events"),
		},
		Log: LogConfig{
			Mode:  valueOrDefault("LOG_MODE", name),
			Level: valueOrDefault("LOG_LEVEL", "info"),
		},
	}

	var err error
	durations := []struct {
		key string
		dst *time.Duration
		def time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &env.HTTP.ReadTimeout, 10 * time.Second},
		{"SERVER_WRITE_TIMEOUT", &env.HTTP.WriteTimeout, 15 * time.Second},
		{"SERVER_SHUTDOWN_TIMEOUT", &env.HTTP.ShutdownTimeout, 10 * time.Second},
		{"SPARK_LINGER", &env.Spark.Linger, pathway.DefaultSparkLinger},
	}
	for _, d := range durations {
		if *d.dst, err = parseDuration(d.key, d.def); err != nil {
			return Environment{}, err
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"LAYOUT_NODE_WIDTH", &env.Layout.NodeWidth},
		{"LAYOUT_NODE_HEIGHT", &env.Layout.NodeHeight},
		{"LAYOUT_HORIZONTAL_GAP", &env.Layout.HorizontalGap},
		{"LAYOUT_VERTICAL_GAP", &env.Layout.VerticalGap},
		{"MINDMAP_CENTER_X", &env.Radial.CenterX},
		{"MINDMAP_CENTER_Y", &env.Radial.CenterY},
		{"MINDMAP_RADIUS", &env.Radial.Radius},
		{"SPARK_CHANCE", &env.Spark.Chance},
	}
	for _, f := range floats {
		if *f.dst, err = parseFloat(f.key, *f.dst); err != nil {
			return Environment{}, err
		}
	}
	if env.Spark.Chance < 0 || env.Spark.Chance > 1 {
		return Environment{}, fmt.Errorf("invalid SPARK_CHANCE %v: must be within [0, 1]", env.Spark.Chance)
	}
	env.Layout.Ranking = pathway.ParseRanking(os.Getenv("LAYOUT_RANKING"))

	switch env.Database.Driver {
	case "postgres", "sqlite":
	default:
		return Environment{}, fmt.Errorf("invalid DB_DRIVER %q", env.Database.Driver)
	}
	if env.Auth.Domain == "" && env.Auth.Secret == "" {
		if !env.IsDevelopment {
			return Environment{}, fmt.Errorf("AUTH0_DOMAIN or JWT_SECRET_KEY must be set in %s (only development and test fall back to a local secret)", name)
		}
		env.Auth.Secret = "dev-only-secret"
	}
	return env, nil
}

func valueOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func splitCSV(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
