// Package plugin provides the registry of ledger agent plugins and the
// structural contract every plugin must satisfy.
package plugin

import (
	"fmt"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/ledgerfoundry/ledgergate/domain"
)

// KindLedgerAgent is the kind every agent plugin must declare. Any other
// kind is rejected.
const KindLedgerAgent = "ledgerAgentPlugin"

// Plugin is a named capability bundle contributing one additional
// service endpoint to an agent.
type Plugin interface {
	// Kind must return KindLedgerAgent.
	Kind() string
	// ServiceType is the URI-like identifier of the plugin's root
	// service, used as the service-map key.
	ServiceType() string
	// Router handles requests under the plugin's sub-path. It must
	// declare a root route.
	Router() *echo.Echo
}

// Registry resolves plugin names to plugins.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// DefaultRegistry is the shared registry used by the service.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
	}
}

// Register adds a plugin under the given name. Registration validates
// the structural contract; validation is repeated at use because
// lookups must stay idempotent across restarts.
func (r *Registry) Register(name string, p Plugin) error {
	if name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if p == nil {
		return fmt.Errorf("plugin is required")
	}
	if err := Validate(name, p); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin already registered for %s", name)
	}
	r.plugins[name] = p
	return nil
}

// Resolve returns the plugin registered under name.
func (r *Registry) Resolve(name string) (Plugin, error) {
	r.mu.RLock()
	p := r.plugins[name]
	r.mu.RUnlock()
	if p == nil {
		return nil, &domain.NotFoundError{Resource: "plugin", ID: name}
	}
	return p, nil
}

// Register adds a plugin to the default registry.
func Register(name string, p Plugin) error {
	return DefaultRegistry.Register(name, p)
}

// MustRegister adds a plugin to the default registry or panics.
func MustRegister(name string, p Plugin) {
	if err := Register(name, p); err != nil {
		panic(err)
	}
}

// Validate checks the structural contract: kind, declared service type,
// and a router that declares a root route. Violations are reported as
// *domain.InvalidPluginError carrying the plugin name.
func Validate(name string, p Plugin) error {
	if p.Kind() != KindLedgerAgent {
		return &domain.InvalidPluginError{Name: name, Reason: fmt.Sprintf("kind %q is not %q", p.Kind(), KindLedgerAgent)}
	}
	if p.ServiceType() == "" {
		return &domain.InvalidPluginError{Name: name, Reason: "missing service type"}
	}
	router := p.Router()
	if router == nil {
		return &domain.InvalidPluginError{Name: name, Reason: "missing router"}
	}
	if !hasRootRoute(router) {
		return &domain.InvalidPluginError{Name: name, Reason: "router does not declare a root route"}
	}
	return nil
}

func hasRootRoute(e *echo.Echo) bool {
	for _, route := range e.Routes() {
		if route.Path == "/" {
			return true
		}
	}
	return false
}

// NormalizeName lower-cases and hyphenates a plugin name for use as a
// URL path segment.
func NormalizeName(name string) string {
	normalized := strings.ToLower(name)
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.ReplaceAll(normalized, "_", "-")
	return normalized
}
