package config

import (
	"strings"
	"time"
)

// Settings is the typed view of the configuration consumed at startup.
type Settings struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	AcceptedOrigins []string
	LogLevel        string

	DB DatabaseSettings

	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	AdminEmail        string
	SecureCookies     bool

	ContactRelayURL      string
	ContactRatePerMinute int

	ResumePath     string
	ResumeS3Bucket string
	ResumeS3Key    string
	AWSRegion      string

	Notify NotifySettings
}

type DatabaseSettings struct {
	Type       string
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	URL        string
	SQLitePath string
	ReplicaDSN string
}

type NotifySettings struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
	OwnerPhone       string

	ResendAPIKey    string
	ResendFromEmail string
	OwnerEmail      string
}

// Load builds Settings from an environment map produced by New (optionally merged with SSM values).
func Load(c map[string]string) Settings {
	return Settings{
		Port:            GetString(c, "PORT", "8080"),
		ReadTimeout:     time.Duration(GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second,
		WriteTimeout:    time.Duration(GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second,
		IdleTimeout:     time.Duration(GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second,
		AcceptedOrigins: splitList(GetString(c, "ACCEPTED_ORIGINS", "")),
		LogLevel:        GetString(c, "LOG_LEVEL", "info"),

		DB: DatabaseSettings{
			Type:       strings.ToLower(GetString(c, "DB_TYPE", "supa")),
			Host:       GetString(c, "SUPABASE_DB_HOST", ""),
			User:       GetString(c, "SUPABASE_DB_USER", ""),
			Password:   GetString(c, "SUPABASE_DB_PASSWORD", ""),
			Name:       GetString(c, "SUPABASE_DB_NAME", ""),
			Port:       GetString(c, "SUPABASE_DB_PORT", "5432"),
			URL:        GetString(c, "DATABASE_URL", ""),
			SQLitePath: GetString(c, "SQLITE_PATH", "portfolio.db"),
			ReplicaDSN: GetString(c, "DB_REPLICA_DSN", ""),
		},

		SupabaseURL:       strings.TrimSuffix(GetString(c, "SUPABASE_URL", ""), "/"),
		SupabaseAnonKey:   GetString(c, "SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret: GetString(c, "SUPABASE_JWT_SECRET", ""),
		AdminEmail:        GetString(c, "ADMIN_EMAIL", ""),
		SecureCookies:     GetBool(c, "SECURE_COOKIES", true),

		ContactRelayURL:      GetFirstString(c, "", "CONTACT_RELAY_URL", "FORMSPREE_URL", "NEXT_PUBLIC_FORMSPREE_URL"),
		ContactRatePerMinute: GetInt(c, "CONTACT_RATE_PER_MINUTE", 5),

		ResumePath:     GetString(c, "RESUME_PATH", "public/resume.pdf"),
		ResumeS3Bucket: GetString(c, "RESUME_S3_BUCKET", ""),
		ResumeS3Key:    GetString(c, "RESUME_S3_KEY", "resume.pdf"),
		AWSRegion:      GetString(c, "AWS_REGION", ""),

		Notify: NotifySettings{
			TwilioAccountSID: GetString(c, "TWILIO_ACCOUNT_SID", ""),
			TwilioAuthToken:  GetString(c, "TWILIO_AUTH_TOKEN", ""),
			TwilioFrom:       GetString(c, "TWILIO_FROM", ""),
			OwnerPhone:       GetString(c, "OWNER_PHONE", ""),
			ResendAPIKey:     GetString(c, "RESEND_API_KEY", ""),
			ResendFromEmail:  GetString(c, "RESEND_FROM_EMAIL", ""),
			OwnerEmail:       GetString(c, "OWNER_EMAIL", ""),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
