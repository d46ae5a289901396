package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Storage backends accepted by DETAILING_STORAGE.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Slot policies accepted by DETAILING_SLOT_POLICY.
const (
	SlotPolicySeeded  = "seeded"
	SlotPolicyDerived = "derived"
)

// Config captures environment driven configuration values for the back-office service.
type Config struct {
	HTTPPort   int
	Storage    string
	SQLitePath string
	Location   *time.Location
	LogLevel   string

	AdminUsername     string
	AdminPasswordHash string
	AdminPassword     string
	SessionTTL        time.Duration
	CSRFKey           []byte
	TrustedOrigins    []string
	SecureCookies     bool

	SlotPolicy        string
	StrictTransitions bool

	BusinessName  string
	BusinessEmail string
	BusinessPhone string

	ResendKey string
	MailFrom  string
}

// LoadDotEnv merges variables from the given .env files into the process
// environment without overriding values that are already set. Missing files
// are ignored; with no paths, ".env" is tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("fichier d'environnement illisible %s: %w", path, err)
		}
	}
	return nil
}

// Load parses configuration values from the current process environment.
//
// Optional values fall back to defaults. Missing required values and invalid
// values are reported together with localized messages.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:      8080,
		Storage:       StorageSQLite,
		SQLitePath:    "detailing.db",
		LogLevel:      "info",
		SessionTTL:    24 * time.Hour,
		SlotPolicy:    SlotPolicySeeded,
		BusinessName:  "LM Detailing",
		BusinessEmail: "contact@lmdetailing.com",
		BusinessPhone: "06 93 94 03 67",
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 4)

	if portValue := env("DETAILING_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "DETAILING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if storage := strings.ToLower(env("DETAILING_STORAGE")); storage != "" {
		switch storage {
		case StorageSQLite, StorageMemory:
			cfg.Storage = storage
		default:
			invalid = append(invalid, "DETAILING_STORAGE")
		}
	}

	if path := env("DETAILING_SQLITE_PATH"); path != "" {
		cfg.SQLitePath = path
	}

	tz := env("DETAILING_TIMEZONE")
	if tz == "" {
		tz = "Indian/Reunion"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		invalid = append(invalid, "DETAILING_TIMEZONE")
	} else {
		cfg.Location = loc
	}

	if level := env("DETAILING_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if username := env("DETAILING_ADMIN_USERNAME"); username == "" {
		missing = append(missing, "DETAILING_ADMIN_USERNAME")
	} else {
		cfg.AdminUsername = username
	}

	cfg.AdminPasswordHash = env("DETAILING_ADMIN_PASSWORD_HASH")
	cfg.AdminPassword = os.Getenv("DETAILING_ADMIN_PASSWORD")
	if cfg.AdminPasswordHash == "" && cfg.AdminPassword == "" {
		missing = append(missing, "DETAILING_ADMIN_PASSWORD_HASH")
	}

	if ttlValue := env("DETAILING_SESSION_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "DETAILING_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if keyValue := env("DETAILING_CSRF_KEY"); keyValue != "" {
		key, err := hex.DecodeString(keyValue)
		if err != nil || len(key) != 32 {
			invalid = append(invalid, "DETAILING_CSRF_KEY")
		} else {
			cfg.CSRFKey = key
		}
	}

	if origins := env("DETAILING_TRUSTED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.TrustedOrigins = append(cfg.TrustedOrigins, trimmed)
			}
		}
	}

	if secure := env("DETAILING_SECURE_COOKIES"); secure != "" {
		value, err := strconv.ParseBool(secure)
		if err != nil {
			invalid = append(invalid, "DETAILING_SECURE_COOKIES")
		} else {
			cfg.SecureCookies = value
		}
	}

	if policy := strings.ToLower(env("DETAILING_SLOT_POLICY")); policy != "" {
		switch policy {
		case SlotPolicySeeded, SlotPolicyDerived:
			cfg.SlotPolicy = policy
		default:
			invalid = append(invalid, "DETAILING_SLOT_POLICY")
		}
	}

	if strict := env("DETAILING_STRICT_TRANSITIONS"); strict != "" {
		value, err := strconv.ParseBool(strict)
		if err != nil {
			invalid = append(invalid, "DETAILING_STRICT_TRANSITIONS")
		} else {
			cfg.StrictTransitions = value
		}
	}

	if name := env("DETAILING_BUSINESS_NAME"); name != "" {
		cfg.BusinessName = name
	}
	if email := env("DETAILING_BUSINESS_EMAIL"); email != "" {
		cfg.BusinessEmail = email
	}
	if phone := env("DETAILING_BUSINESS_PHONE"); phone != "" {
		cfg.BusinessPhone = phone
	}

	cfg.ResendKey = env("DETAILING_RESEND_KEY")
	cfg.MailFrom = env("DETAILING_MAIL_FROM")
	if cfg.ResendKey != "" && cfg.MailFrom == "" {
		missing = append(missing, "DETAILING_MAIL_FROM")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("variables d'environnement obligatoires manquantes: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("valeurs de variables d'environnement invalides: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
