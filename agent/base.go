package agent

import (
	"fmt"
	"sync"

	"github.com/hupe1980/orchestra/core"
)

// BaseAgent bundles the identity surface of core.Agent: id, name,
// description, domain, version, activity flag and the declared capability
// list. Embed it in concrete agent implementations and supply an Execute
// method to satisfy the interface. All exported methods are goroutine-safe.
type BaseAgent struct {
	id           string
	name         string
	description  string
	domain       string
	version      string
	mu           sync.Mutex
	active       bool
	capabilities []core.Capability
}

// NewBaseAgent constructs an active BaseAgent with a generated description
// (customizable via SetDescription) and version "1.0.0".
func NewBaseAgent(id, name, domain string, capabilities ...core.Capability) BaseAgent {
	return BaseAgent{
		id:           id,
		name:         name,
		description:  fmt.Sprintf("Agent %s", name),
		domain:       domain,
		version:      "1.0.0",
		active:       true,
		capabilities: capabilities,
	}
}

// ID returns the stable agent identifier.
func (b *BaseAgent) ID() string { return b.id }

// Name returns the human-readable name for this agent.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of this agent's purpose.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the agent's description.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }

// Domain returns the agent's domain.
func (b *BaseAgent) Domain() string { return b.domain }

// Version returns the agent implementation revision.
func (b *BaseAgent) Version() string { return b.version }

// SetVersion updates the agent implementation revision.
func (b *BaseAgent) SetVersion(version string) { b.version = version }

// IsActive reports whether the agent may receive new work.
func (b *BaseAgent) IsActive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// SetActive toggles whether the agent may receive new work. Deactivated
// agents remain registered but are excluded from planning catalogues.
func (b *BaseAgent) SetActive(active bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = active
}

// Capabilities returns the ordered list of declared capabilities.
func (b *BaseAgent) Capabilities() []core.Capability { return b.capabilities }
