package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:3000"`

	Database    Database    `envPrefix:"DATABASE_"`
	Stripe      Stripe      `envPrefix:"STRIPE_"`
	Utmify      Utmify      `envPrefix:"UTMIFY_"`
	Admin       Admin       `envPrefix:"ADMIN_"`
	Attribution Attribution `envPrefix:"ATTRIBUTION_"`
	Sweeper     Sweeper     `envPrefix:"SWEEPER_"`
}

type Database struct {
	Driver          string        `env:"DRIVER" envDefault:"postgres"` // postgres | mysql | sqlite
	URL             string        `env:"URL"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"50"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
}

type Stripe struct {
	SecretKey        string   `env:"SECRET_KEY"`
	WebhookSecret    string   `env:"WEBHOOK_SECRET"`
	Currency         string   `env:"CURRENCY" envDefault:"eur"`
	Locale           string   `env:"LOCALE" envDefault:"fr"`
	AllowedCountries []string `env:"ALLOWED_COUNTRIES" envSeparator:"," envDefault:"FR,BE,CH,LU,DE,IT,ES,PT,NL,AT"`
}

type Utmify struct {
	APIURL   string        `env:"API_URL" envDefault:"https://api.utmify.com.br/api-credentials/orders"`
	APIToken string        `env:"API_TOKEN"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type Admin struct {
	Password      string        `env:"PASSWORD"`
	PasswordHash  string        `env:"PASSWORD_HASH"` // bcrypt, takes precedence over PASSWORD
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	LoginRate     float64       `env:"LOGIN_RATE" envDefault:"0.2"` // attempts per second per IP
	LoginBurst    int           `env:"LOGIN_BURST" envDefault:"5"`
}

type Attribution struct {
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`
	BatchSize    int           `env:"BATCH_SIZE" envDefault:"20"`
	MaxAttempts  int           `env:"MAX_ATTEMPTS" envDefault:"8"`
	BaseBackoff  time.Duration `env:"BASE_BACKOFF" envDefault:"30s"`
	MaxBackoff   time.Duration `env:"MAX_BACKOFF" envDefault:"6h"`
}

type Sweeper struct {
	Interval   time.Duration `env:"INTERVAL" envDefault:"15m"`
	PendingTTL time.Duration `env:"PENDING_TTL" envDefault:"24h"`
	BatchSize  int           `env:"BATCH_SIZE" envDefault:"50"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

func (e Environment) IsProduction() bool {
	return e.Name == "production"
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
