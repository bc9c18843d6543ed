package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/orchestra/core"
	"github.com/hupe1980/orchestra/internal/util"
	"github.com/hupe1980/orchestra/logging"
)

// Options holds configuration overrides passed to New().
type Options struct {
	// Logger provides structured logging. Defaults to NoOp logger if nil.
	Logger logging.Logger
}

// SearchCriteria is a conjunctive filter over all registered agents. Zero
// fields do not constrain the result. Name matches case-insensitively as a
// substring of the agent name. IsActive, when set, filters on activity;
// unlike All(), an unset IsActive includes inactive agents.
type SearchCriteria struct {
	Domain     string
	Capability string
	Name       string
	IsActive   *bool
}

// Registry indexes agents by id, domain and capability name.
//
// Registration overwrites any prior entry with the same agent id, replacing
// its index entries. All public methods are safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	agents       map[string]core.Agent
	order        []string            // registration order of agent ids
	byDomain     map[string][]string // domain -> agent ids
	byCapability map[string][]string // capability name -> agent ids
	logger       logging.Logger
}

// New constructs an empty registry with optional overrides.
func New(optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{
		agents:       make(map[string]core.Agent),
		byDomain:     make(map[string][]string),
		byCapability: make(map[string][]string),
		logger:       opts.Logger,
	}
}

// Register adds an agent to the registry, indexing it by domain and by each
// declared capability name. Capability schemas are structurally validated up
// front so malformed schemas are rejected at registration rather than
// surfacing as dispatch failures. An existing agent with the same id is
// replaced without warning.
func (r *Registry) Register(agent core.Agent) error {
	for _, capability := range agent.Capabilities() {
		if err := util.ValidateSchema(capability.InputSchema); err != nil {
			return fmt.Errorf("capability %s input schema: %w", capability.Name, err)
		}
		if err := util.ValidateSchema(capability.OutputSchema); err != nil {
			return fmt.Errorf("capability %s output schema: %w", capability.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[agent.ID()]; exists {
		r.removeIndexEntriesLocked(agent.ID())
	} else {
		r.order = append(r.order, agent.ID())
	}

	r.agents[agent.ID()] = agent
	r.byDomain[agent.Domain()] = append(r.byDomain[agent.Domain()], agent.ID())
	for _, capability := range agent.Capabilities() {
		r.byCapability[capability.Name] = append(r.byCapability[capability.Name], agent.ID())
	}

	r.logger.Debug("agent registered", "agent_id", agent.ID(), "domain", agent.Domain())
	return nil
}

// Unregister removes an agent and all of its index entries, pruning index
// buckets that become empty. Returns ErrAgentNotFound for unknown ids.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[id]; !exists {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}

	r.removeIndexEntriesLocked(id)
	delete(r.agents, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.logger.Debug("agent unregistered", "agent_id", id)
	return nil
}

// Get retrieves an agent by id.
func (r *Registry) Get(id string) (core.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[id]
	return agent, ok
}

// All returns the active agents in registration order.
func (r *Registry) All() []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agents := make([]core.Agent, 0, len(r.order))
	for _, id := range r.order {
		if agent := r.agents[id]; agent.IsActive() {
			agents = append(agents, agent)
		}
	}
	return agents
}

// ByDomain returns the agents indexed under a domain.
func (r *Registry) ByDomain(domain string) []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collectLocked(r.byDomain[domain])
}

// ByCapability returns the agents declaring a capability with the given name.
func (r *Registry) ByCapability(name string) []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collectLocked(r.byCapability[name])
}

// Search applies the criteria conjunctively over all stored agents, including
// inactive ones unless IsActive is set.
func (r *Registry) Search(criteria SearchCriteria) []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []core.Agent
	for _, id := range r.order {
		agent := r.agents[id]
		if criteria.Domain != "" && agent.Domain() != criteria.Domain {
			continue
		}
		if criteria.Name != "" && !strings.Contains(strings.ToLower(agent.Name()), strings.ToLower(criteria.Name)) {
			continue
		}
		if criteria.IsActive != nil && agent.IsActive() != *criteria.IsActive {
			continue
		}
		if criteria.Capability != "" && !declaresCapability(agent, criteria.Capability) {
			continue
		}
		matches = append(matches, agent)
	}
	return matches
}

// HasCapability reports whether the agent with the given id declares a
// capability named name.
func (r *Registry) HasCapability(id, name string) bool {
	agent, ok := r.Get(id)
	return ok && declaresCapability(agent, name)
}

// collectLocked maps index ids back to agents; caller must hold at least a
// read lock.
func (r *Registry) collectLocked(ids []string) []core.Agent {
	agents := make([]core.Agent, 0, len(ids))
	for _, id := range ids {
		if agent, ok := r.agents[id]; ok {
			agents = append(agents, agent)
		}
	}
	return agents
}

// removeIndexEntriesLocked drops the agent's domain and capability index
// entries, pruning empty buckets; caller must hold the write lock.
func (r *Registry) removeIndexEntriesLocked(id string) {
	agent := r.agents[id]
	r.byDomain[agent.Domain()] = removeID(r.byDomain[agent.Domain()], id)
	if len(r.byDomain[agent.Domain()]) == 0 {
		delete(r.byDomain, agent.Domain())
	}
	for _, capability := range agent.Capabilities() {
		r.byCapability[capability.Name] = removeID(r.byCapability[capability.Name], id)
		if len(r.byCapability[capability.Name]) == 0 {
			delete(r.byCapability, capability.Name)
		}
	}
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func declaresCapability(agent core.Agent, name string) bool {
	for _, capability := range agent.Capabilities() {
		if capability.Name == name {
			return true
		}
	}
	return false
}
