package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/haukened/desec-go/pkg/desec"
	"github.com/haukened/desec-go/pkg/dnsname"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix is stripped from every variable before it becomes a config key.
const envPrefix = "DESEC_"

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// APIToken authenticates every request. It is never logged.
	APIToken string `koanf:"api_token" validate:"required"`

	// APIURL is the API root, e.g. https://desec.io/api/v1.
	APIURL string `koanf:"api_url" validate:"required,url,startswith=http"`

	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Timeout bounds a whole command, including every request it makes.
	Timeout time.Duration `koanf:"timeout" validate:"required"`

	// Trace selects the span exporter: "none", "console" or "otlp".
	Trace string `koanf:"trace" validate:"required,oneof=none console otlp"`

	// TraceEndpoint is the OTLP/gRPC collector in host:port form. When empty
	// the exporter falls back to OTEL_EXPORTER_OTLP_ENDPOINT or localhost:4317.
	TraceEndpoint string `koanf:"trace_endpoint" validate:"omitempty,host_port"`

	// Domain is the default zone for domain-scoped commands.
	Domain string `koanf:"domain" validate:"omitempty,dns_name"`

	// Subname is the default subname for rrset commands.
	Subname string `koanf:"subname"`
}

// DEFAULT_APP_CONFIG defines the default settings. The token has no default
// and must come from the environment.
var DEFAULT_APP_CONFIG = AppConfig{
	APIURL:   desec.DefaultBaseURL,
	Env:      "prod",
	LogLevel: "warn",
	Timeout:  30 * time.Second,
	Trace:    "none",
}

// validHostPort accepts "host:port" where host is an IP address or a DNS name
// and port is in 1-65535.
func validHostPort(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" || port == "" {
		return false
	}
	if net.ParseIP(host) == nil {
		if _, err := dnsname.ToASCII(host); err != nil {
			return false
		}
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0
}

// validDNSName accepts any name that converts to its ASCII form, including
// internationalized names.
func validDNSName(fl validator.FieldLevel) bool {
	_, err := dnsname.ToASCII(fl.Field().String())
	return err == nil
}

// envLoader loads environment variables with the prefix "DESEC_", lowercased
// and with the prefix removed. Blank variables are skipped so they do not
// override defaults. It can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			value = strings.TrimSpace(value)
			if value == "" {
				return "", nil
			}
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG into k.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the "host_port" and "dns_name" tags.
var registerValidation = func(v *validator.Validate) error {
	if err := v.RegisterValidation("host_port", validHostPort); err != nil {
		return err
	}
	return v.RegisterValidation("dns_name", validDNSName)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

// ClientOptions maps the configuration onto desec.Options. Logger, tracer
// and HTTP client are left for the caller to inject.
func (c *AppConfig) ClientOptions() desec.Options {
	return desec.Options{
		Token:   c.APIToken,
		BaseURL: c.APIURL,
	}
}
