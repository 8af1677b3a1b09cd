package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	DBDriver string // sqlite|postgres|memory
	DBDSN    string

	BlobBasePath string // export archive root

	AuthHMACSecret string
	SessionTTL     time.Duration
	SecureCookies  bool

	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOrigins []string

	// Question bank layout
	BankSheet      string // "" = first sheet (BANK_SHEET=*)
	QuestionColumn string
	CorrectColumn  string
	OptionColumns  []string

	// Missed list layout
	MissedQuestionColumn string
	MissedIndexColumn    string
	MissedResultColumn   string

	MatchBy          string // exact_text|normalized_text|index
	ProgressCells    int
	AutoAdvanceDelay time.Duration // 0 = disabled
	MaxUploadBytes   int64
}

// Load reads a .env file when present, then the environment.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),

		AuthHMACSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		SessionTTL:     envDuration("SESSION_TTL", 8*time.Hour),
		SecureCookies:  envBool("SECURE_COOKIES", false),

		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassHash: envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"),

		BankSheet:      sheetOr("BANK_SHEET", "Sheet1"),
		QuestionColumn: envOr("QUESTION_COLUMN", "Вопрос"),
		CorrectColumn:  envOr("CORRECT_COLUMN", "Правильный ответ"),
		OptionColumns:  csvOr("OPTION_COLUMNS", "A,B,C,D,E,F"),

		MissedQuestionColumn: envOr("MISSED_QUESTION_COLUMN", "Вопрос"),
		MissedIndexColumn:    envOr("MISSED_INDEX_COLUMN", "Индекс"),
		MissedResultColumn:   envOr("MISSED_RESULT_COLUMN", "Результат"),

		MatchBy:          envOr("MATCH_BY", "normalized_text"),
		ProgressCells:    envInt("PROGRESS_CELLS", 18),
		AutoAdvanceDelay: envDuration("AUTO_ADVANCE_DELAY", 0),
		MaxUploadBytes:   int64(envInt("MAX_UPLOAD_BYTES", 10<<20)),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func sheetOr(k, def string) string {
	if v := envOr(k, def); v != "*" {
		return v
	}
	return ""
}
func envInt(k string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k))); err == nil && v > 0 {
		return v
	}
	return def
}

// envDuration accepts Go durations ("1s") and "off"/"disabled" for zero.
func envDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	switch strings.ToLower(v) {
	case "":
		return def
	case "off", "disabled", "0":
		return 0
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d
	}
	return def
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
