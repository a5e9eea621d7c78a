package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/haukened/desec-go/internal/common/log"
	"github.com/haukened/desec-go/internal/config"
	"github.com/haukened/desec-go/internal/telemetry"
	"github.com/haukened/desec-go/pkg/desec"
	"github.com/haukened/desec-go/pkg/desec/metrics"
	"github.com/haukened/desec-go/pkg/dnsname"
)

// Error message constants for consistent error handling
const (
	errUnknownOutput = "unknown output format %q (want json or yaml)"
	errNoDomain      = "no domain given: pass --domain or set DESEC_DOMAIN"
	errMetricsFile   = "write metrics file: %w"
	errTelemetry     = "shutdown telemetry: %w"
)

// app carries what every API command needs. It is built once per run by
// setup and torn down by close.
type app struct {
	// flags
	output      string
	domain      string
	metricsFile string

	cfg      *config.AppConfig
	client   *desec.Client
	registry *prometheus.Registry
	cancel   context.CancelFunc
	shutdown func(context.Context) error
}

// setup loads configuration, configures logging, tracing and metrics, and
// builds the API client. The command context gets the configured timeout.
func (a *app) setup(cmd *cobra.Command) error {
	if a.output != "json" && a.output != "yaml" {
		return fmt.Errorf(errUnknownOutput, a.output)
	}
	if a.client != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
		return err
	}

	tp, shutdown, err := telemetry.Setup(cmd.Context(), telemetry.Config{
		Exporter: cfg.Trace,
		Endpoint: cfg.TraceEndpoint,
		Version:  version,
	})
	if err != nil {
		return err
	}
	a.shutdown = shutdown

	httpClient := &http.Client{}
	if a.metricsFile != "" {
		a.registry = prometheus.NewRegistry()
		rt, err := metrics.NewTransport(a.registry, nil)
		if err != nil {
			return err
		}
		httpClient.Transport = rt
	}

	opts := cfg.ClientOptions()
	opts.UserAgent = appName + "/" + version
	opts.HTTPClient = httpClient
	opts.Logger = log.GetLogger()
	opts.TracerProvider = tp

	client, err := desec.NewWithOptions(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	cmd.SetContext(ctx)

	a.cfg = cfg
	a.client = client
	a.cancel = cancel

	log.Debug(map[string]any{
		"version": version,
		"env":     cfg.Env,
		"api_url": cfg.APIURL,
		"trace":   cfg.Trace,
		"timeout": cfg.Timeout.String(),
		"metrics": a.metricsFile,
		"command": cmd.CommandPath(),
		"domain":  cfg.Domain,
		"subname": cfg.Subname,
		"output":  a.output,
	}, "desecctl configured")
	return nil
}

// close flushes spans and writes the metrics file. It is safe to call when
// setup never ran.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.cancel != nil {
		a.cancel()
	}
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf(errTelemetry, err))
		}
	}
	if a.registry != nil {
		if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf(errMetricsFile, err))
		} else {
			log.Info(map[string]any{"path": a.metricsFile}, "Metrics written")
		}
	}
	return errors.Join(errs...)
}

// configuredDomain is the --domain flag, else DESEC_DOMAIN.
func (a *app) configuredDomain() string {
	if a.domain != "" {
		return a.domain
	}
	if a.cfg != nil {
		return a.cfg.Domain
	}
	return ""
}

// zone returns the domain commands operate on, in ASCII form.
func (a *app) zone() (string, error) {
	name := a.configuredDomain()
	if name == "" {
		return "", errors.New(errNoDomain)
	}
	return dnsname.ToASCII(name)
}

// target resolves a name argument to (domain, subname). With a configured
// domain the name is a subname ("@" or "" for the apex); without one it must
// be a fully qualified name, split at its registrable domain.
func (a *app) target(name string) (domain, subname string, err error) {
	if a.configuredDomain() != "" {
		domain, err = a.zone()
		if err != nil {
			return "", "", err
		}
		return domain, relativeSubname(name, domain), nil
	}
	if name == "" || name == dnsname.ApexMarker {
		return "", "", errors.New(errNoDomain)
	}
	return dnsname.Split(name)
}

// defaultSubname returns args[0] when present, else DESEC_SUBNAME.
func (a *app) defaultSubname(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if a.cfg != nil {
		return a.cfg.Subname
	}
	return ""
}

// relativeSubname turns name into a subname of domain. "@" and domain itself
// are the apex, and a name ending in "."+domain loses that suffix.
func relativeSubname(name, domain string) string {
	name = dnsname.Canonical(name)
	if name == dnsname.ApexMarker {
		return ""
	}
	ascii, err := dnsname.ToASCII(name)
	if err != nil {
		return name
	}
	if ascii == domain {
		return ""
	}
	if sub, ok := strings.CutSuffix(ascii, "."+domain); ok {
		return sub
	}
	return name
}

// exitCode maps client errors to process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, desec.ErrNotFound):
		return 3
	case errors.Is(err, desec.ErrBadRequest), errors.Is(err, desec.ErrBulkRejected):
		return 4
	case errors.Is(err, desec.ErrTransport):
		return 5
	default:
		return 1
	}
}
