package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Hold    HoldConfig
	Gateway GatewayConfig
	Worker  WorkerConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Ho_Chi_Minh"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`

	// Applies embedded migrations on startup
	AutoMigrate bool `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Ho_Chi_Minh"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"25200"` // 7*60*60
}

type JWTConfig struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true"`
	Duration string        `envconfig:"JWT_DURATION" default:"24h"`
	Issuer   string        `envconfig:"JWT_ISSUER"`
	Leeway   time.Duration `envconfig:"JWT_LEEWAY" default:"30s"`
}

type HoldConfig struct {
	Window        time.Duration `envconfig:"HOLD_WINDOW" default:"300s"`
	SweepInterval time.Duration `envconfig:"HOLD_SWEEP_INTERVAL" default:"30s"`

	// Upper bound for a single hold, in slots
	MaxSlots int `envconfig:"HOLD_MAX_SLOTS" default:"8"`
}

type GatewayConfig struct {
	ReturnURL   string        `envconfig:"GATEWAY_RETURN_URL" default:"http://localhost:8080/api/payments/callback"`
	HTTPTimeout time.Duration `envconfig:"GATEWAY_HTTP_TIMEOUT" default:"10s"`
	MoMo        MoMoConfig
	VNPay       VNPayConfig
}

type MoMoConfig struct {
	Endpoint    string `envconfig:"MOMO_ENDPOINT" default:"https://test-payment.momo.vn/v2/gateway/api/create"`
	RefundURL   string `envconfig:"MOMO_REFUND_ENDPOINT" default:"https://test-payment.momo.vn/v2/gateway/api/refund"`
	PartnerCode string `envconfig:"MOMO_PARTNER_CODE" default:"MOMO"`
	AccessKey   string `envconfig:"MOMO_ACCESS_KEY"`
	SecretKey   string `envconfig:"MOMO_SECRET_KEY"`
}

type VNPayConfig struct {
	PayURL     string `envconfig:"VNPAY_PAY_URL" default:"https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"`
	APIURL     string `envconfig:"VNPAY_API_URL" default:"https://sandbox.vnpayment.vn/merchant_webapi/api/transaction"`
	TmnCode    string `envconfig:"VNPAY_TMN_CODE"`
	HashSecret string `envconfig:"VNPAY_HASH_SECRET"`
}

type WorkerConfig struct {
	RefundInterval    time.Duration `envconfig:"REFUND_RETRY_INTERVAL" default:"1m"`
	RefundMaxAttempts int           `envconfig:"REFUND_MAX_ATTEMPTS" default:"10"`
	RefundBatchSize   int           `envconfig:"REFUND_BATCH_SIZE" default:"20"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings envconfig accepts but the service cannot run with.
func (c Config) Validate() error {
	var problems []string
	if c.Hold.Window <= 0 {
		problems = append(problems, "HOLD_WINDOW must be positive")
	}
	if c.Hold.SweepInterval <= 0 {
		problems = append(problems, "HOLD_SWEEP_INTERVAL must be positive")
	}
	if c.Hold.MaxSlots < 1 {
		problems = append(problems, "HOLD_MAX_SLOTS must be at least 1")
	}
	if _, err := time.ParseDuration(c.JWT.Duration); err != nil {
		problems = append(problems, "JWT_DURATION: "+err.Error())
	}
	if c.Gateway.HTTPTimeout <= 0 {
		problems = append(problems, "GATEWAY_HTTP_TIMEOUT must be positive")
	}
	if c.Worker.RefundInterval <= 0 || c.Worker.RefundBatchSize < 1 || c.Worker.RefundMaxAttempts < 1 {
		problems = append(problems, "REFUND_* worker settings must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Ho_Chi_Minh",
			MaxConns: 10,

			// e2e applies migrations itself
			AutoMigrate: false,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Ho_Chi_Minh",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 25200,
		},
		JWT: JWTConfig{
			Secret:   "test-secret-key-for-e2e-only",
			Duration: "1h",
			Issuer:   "dat-san-accounts-test",
		},
		Hold: HoldConfig{
			Window:        300 * time.Second,
			SweepInterval: time.Hour,
			MaxSlots:      8,
		},
		Gateway: GatewayConfig{
			ReturnURL:   "http://localhost:8889/api/payments/callback",
			HTTPTimeout: 2 * time.Second,
			MoMo: MoMoConfig{
				Endpoint:    "http://127.0.0.1:1/momo/create",
				RefundURL:   "http://127.0.0.1:1/momo/refund",
				PartnerCode: "MOMO",
				AccessKey:   "test-access",
				SecretKey:   "test-secret",
			},
			VNPay: VNPayConfig{
				PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
				APIURL:     "http://127.0.0.1:1/vnpay/api",
				TmnCode:    "TESTTMN",
				HashSecret: "test-hash-secret",
			},
		},
		Worker: WorkerConfig{
			RefundInterval:    time.Hour,
			RefundMaxAttempts: 3,
			RefundBatchSize:   10,
		},
	}
}
