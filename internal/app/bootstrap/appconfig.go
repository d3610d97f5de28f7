// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging, CORS). AppConfig is everything specific to FestHub: the Mongo
// connection, session cookies, and the admin account.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: festhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Admin account. The admin is not a database record; it signs in with
	// these credentials. AdminPasswordHash is a bcrypt hash; leaving it
	// unset disables admin login entirely.
	AdminUser         string
	AdminPasswordHash string
}
