package temporal

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	workerlog "go.temporal.io/sdk/log"

	platformobservability "github.com/Apurer/go-gin-sales-server/internal/platform/observability"
)

// DialOptions identifies the Temporal cluster and the calling sales process.
type DialOptions struct {
	Address   string
	Namespace string
	// Role names the process in the Temporal identity and tracer, e.g. "sales-api".
	Role string
}

// withDefaults fills unset fields with the local development cluster.
func (o DialOptions) withDefaults() DialOptions {
	if strings.TrimSpace(o.Address) == "" {
		o.Address = client.DefaultHostPort
	}
	if strings.TrimSpace(o.Namespace) == "" {
		o.Namespace = client.DefaultNamespace
	}
	if strings.TrimSpace(o.Role) == "" {
		o.Role = "sales"
	}
	return o
}

// identity is reported to Temporal so workflow history shows which process started or ran a restock.
func (o DialOptions) identity() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown-host"
	}
	return fmt.Sprintf("%s@%s:%d", o.Role, host, os.Getpid())
}

// Dial connects to Temporal with OpenTelemetry tracing and slog-backed logging.
func Dial(opts DialOptions, instruments *platformobservability.Instruments) (client.Client, error) {
	opts = opts.withDefaults()
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer("temporal." + opts.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("temporal tracing interceptor: %w", err)
	}
	logger := slog.Default()
	if instruments != nil && instruments.Logger != nil {
		logger = instruments.Logger
	}
	c, err := client.Dial(client.Options{
		HostPort:     opts.Address,
		Namespace:    opts.Namespace,
		Identity:     opts.identity(),
		Logger:       workerlog.NewStructuredLogger(logger.With(slog.String("component", "temporal"))),
		Interceptors: []interceptor.ClientInterceptor{tracingInterceptor},
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal %s/%s: %w", opts.Address, opts.Namespace, err)
	}
	return c, nil
}
