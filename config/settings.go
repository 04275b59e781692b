package config

import "strings"

// Settings captures every integration the server can be wired to. Each
// optional integration exposes a Configured check so unconfigured features
// degrade to a labeled "not configured" response instead of failing at an
// arbitrary point.
type Settings struct {
	Port string

	DatabaseDSN string
	ReplicaDSN  string

	JWTSecret string
	JWTIssuer string

	S3Bucket      string
	S3Region      string
	PublicBaseURL string

	GeminiAPIKey string
	GeminiModel  string

	ResendAPIKey    string
	ResendFromEmail string
	ContactEmail    string

	AcceptedOrigins []string
}

// FromEnv builds Settings from a config map produced by New.
func FromEnv(c map[string]string) Settings {
	return Settings{
		Port: GetString(c, "PORT", "8080"),

		DatabaseDSN: GetString(c, "DATABASE_DSN", ""),
		ReplicaDSN:  GetString(c, "DATABASE_REPLICA_DSN", ""),

		JWTSecret: GetString(c, "JWT_SECRET", ""),
		JWTIssuer: GetString(c, "JWT_ISSUER", "portfolio-backend"),

		S3Bucket:      GetString(c, "S3_BUCKET", ""),
		S3Region:      GetString(c, "S3_REGION", "us-east-1"),
		PublicBaseURL: GetString(c, "PUBLIC_BASE_URL", ""),

		GeminiAPIKey: GetString(c, "GEMINI_API_KEY", ""),
		GeminiModel:  GetString(c, "GEMINI_MODEL", "gemini-2.5-flash"),

		ResendAPIKey:    GetString(c, "RESEND_API_KEY", ""),
		ResendFromEmail: GetString(c, "RESEND_FROM_EMAIL", ""),
		ContactEmail:    GetString(c, "CONTACT_EMAIL", ""),

		AcceptedOrigins: splitOrigins(GetString(c, "ACCEPTED_ORIGINS", "*")),
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (s Settings) DatabaseConfigured() bool { return s.DatabaseDSN != "" }
func (s Settings) ReplicaConfigured() bool  { return s.ReplicaDSN != "" }
func (s Settings) AuthConfigured() bool     { return s.JWTSecret != "" }
func (s Settings) StorageConfigured() bool  { return s.S3Bucket != "" }
func (s Settings) ChatConfigured() bool     { return s.GeminiAPIKey != "" }
func (s Settings) MailerConfigured() bool {
	return s.ResendAPIKey != "" && s.ResendFromEmail != ""
}
