package hooks

import (
	"sync"

	"github.com/vadiminshakov/satp/core/dto"
)

// Hook validates an inbound message before the gateway acts on it.
type Hook interface {
	Validate(msg dto.Message) bool
}

// Func adapts a function to the Hook interface.
type Func func(msg dto.Message) bool

func (f Func) Validate(msg dto.Message) bool {
	return f(msg)
}

// Registry manages the hooks run for every step and the ones bound to a single step.
type Registry struct {
	mu     sync.RWMutex
	global []Hook
	byStep map[dto.Step][]Hook
}

func NewRegistry() *Registry {
	return &Registry{
		global: make([]Hook, 0),
		byStep: make(map[dto.Step][]Hook),
	}
}

// Register adds a hook run for every step.
func (r *Registry) Register(hook Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.global = append(r.global, hook)
}

// RegisterFor adds a hook run only for step.
func (r *Registry) RegisterFor(step dto.Step, hook Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byStep[step] = append(r.byStep[step], hook)
}

// Execute runs the global hooks, then the hooks of the message's step.
// Returns false if any hook returns false.
func (r *Registry) Execute(msg dto.Message) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, hook := range r.global {
		if !hook.Validate(msg) {
			return false
		}
	}
	for _, hook := range r.byStep[msg.Step()] {
		if !hook.Validate(msg) {
			return false
		}
	}
	return true
}

// Count returns the number of registered hooks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.global)
	for _, hooks := range r.byStep {
		n += len(hooks)
	}
	return n
}
