// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DATABASE_POSTGRES_PASSWORD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when absent.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries the usual locations since the binary and the tests run from
// different directories.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in yaml values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills secrets from the environment when yaml left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("POSTGRES_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
	if cfg.Normalizer.APIKey == "" {
		if val := os.Getenv("OPENAI_API_KEY"); val != "" {
			cfg.Normalizer.APIKey = val
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "voicefin-assistant"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.MetricsAddress == "" {
		cfg.Server.MetricsAddress = ":9100"
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 10000
	}
	if cfg.Database.Postgres.Host == "" {
		cfg.Database.Postgres.Host = "localhost"
	}
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}
	if cfg.Dialogue.StateTTLSeconds == 0 {
		cfg.Dialogue.StateTTLSeconds = 300
	}
	if len(cfg.Dialogue.IntentRules) == 0 {
		cfg.Dialogue.IntentRules = DefaultIntentRules()
	}
	if len(cfg.Dialogue.Categories) == 0 {
		cfg.Dialogue.Categories = DefaultCategories()
	}
	if cfg.Normalizer.Model == "" {
		cfg.Normalizer.Model = "gpt-3.5-turbo"
	}
	if cfg.Normalizer.Timeout == 0 {
		cfg.Normalizer.Timeout = 5000
	}
	if cfg.Normalizer.MaxRetries == 0 {
		cfg.Normalizer.MaxRetries = 2
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// DefaultIntentRules returns the built-in keyword table. Order is the
// evaluation priority: budget wins over expense when both match.
func DefaultIntentRules() []IntentRule {
	return []IntentRule{
		{Intent: "UPDATE_BUDGET", Keywords: []string{"budget", "limit"}},
		{Intent: "CREATE_REMINDER", Keywords: []string{"remind", "reminder"}},
		{Intent: "ADD_EXPENSE", Keywords: []string{"spent", "expense", "paid"}},
		{Intent: "CHECK_BALANCE", Keywords: []string{"balance", "money left"}},
	}
}

// DefaultCategories returns the built-in spending taxonomy. Order is the
// lookup priority when several terms appear in one utterance.
func DefaultCategories() []CategoryRule {
	return []CategoryRule{
		{Name: "food", Terms: []string{"food", "grocery", "groceries", "restaurant", "lunch", "dinner", "tea", "coffee"}},
		{Name: "travel", Terms: []string{"travel", "fuel", "petrol", "cab", "taxi", "bus", "train", "flight"}},
		{Name: "shopping", Terms: []string{"shopping", "clothes", "amazon"}},
		{Name: "rent", Terms: []string{"rent", "house"}},
		{Name: "entertainment", Terms: []string{"entertainment", "movie", "netflix", "game"}},
		{Name: "utilities", Terms: []string{"utilities", "electricity", "water bill", "internet", "phone"}},
		{Name: "health", Terms: []string{"health", "medicine", "doctor", "gym"}},
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Dialogue.StateTTLSeconds < 0 {
		return fmt.Errorf("dialogue.state_ttl_seconds must not be negative")
	}
	for _, rule := range cfg.Dialogue.IntentRules {
		if rule.Intent == "" || len(rule.Keywords) == 0 {
			return fmt.Errorf("dialogue.intent_rules entries need an intent and at least one keyword")
		}
	}
	for _, cat := range cfg.Dialogue.Categories {
		if cat.Name == "" || len(cat.Terms) == 0 {
			return fmt.Errorf("dialogue.categories entries need a name and at least one term")
		}
	}
	if cfg.Normalizer.Enabled && cfg.Normalizer.APIKey == "" {
		return fmt.Errorf("normalizer.api_key is required when the normalizer is enabled")
	}
	return nil
}
