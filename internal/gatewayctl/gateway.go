// Package gatewayctl probes and restarts the openclaw gateway process.
package gatewayctl

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/duanecilliers/openclaw-admin/internal/document"
	"github.com/duanecilliers/openclaw-admin/internal/domain"
)

const (
	DefaultPort         = 18789
	DefaultProbeTimeout = 3 * time.Second
	unknown             = "unknown"
)

// Status describes the gateway as configured and as observed.
type Status struct {
	Running    bool      `json:"running"`
	Port       int       `json:"port"`
	Mode       string    `json:"mode"`
	Bind       string    `json:"bind"`
	AgentCount int       `json:"agentCount"`
	CheckedAt  time.Time `json:"checkedAt"`
	Error      string    `json:"error,omitempty"`
}

// Controller talks to the gateway.
type Controller struct {
	host    string
	timeout time.Duration
	client  *http.Client
	trigger *Trigger
	now     func() time.Time
}

// NewController creates a Controller that probes 127.0.0.1 and restarts
// through trigger.
func NewController(probeTimeout time.Duration, trigger *Trigger) *Controller {
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	return &Controller{
		host:    "127.0.0.1",
		timeout: probeTimeout,
		client:  &http.Client{Timeout: probeTimeout},
		trigger: trigger,
		now:     time.Now,
	}
}

// Probe reports whether something answers on the gateway port with a
// status below 500. Any error, including the timeout, means not running.
func (c *Controller) Probe(ctx context.Context, port int) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s:%d/", c.host, port), nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// Status reads the gateway settings from doc and probes the port.
func (c *Controller) Status(ctx context.Context, doc *document.Document) Status {
	port, ok := doc.Int("gateway", "port")
	if !ok || port <= 0 {
		port = DefaultPort
	}
	mode := doc.String("gateway", "mode")
	if mode == "" {
		mode = unknown
	}
	bind := doc.String("gateway", "bind")
	if bind == "" {
		bind = unknown
	}
	return Status{
		Running:    c.Probe(ctx, port),
		Port:       port,
		Mode:       mode,
		Bind:       bind,
		AgentCount: len(doc.Map("channels", "discord", "accounts")),
		CheckedAt:  c.now().UTC(),
	}
}

// ErrorStatus is reported when the configuration cannot be read.
func (c *Controller) ErrorStatus(err error) Status {
	return Status{Mode: "error", Bind: unknown, CheckedAt: c.now().UTC(), Error: err.Error()}
}

// Restart runs "openclaw gateway restart".
func (c *Controller) Restart(ctx context.Context) domain.RunResult {
	return c.trigger.Run(ctx, "Gateway restart initiated", "gateway", "restart")
}
