package core

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Module is one bot feature with its own Discord session.
type Module interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context)
}

// Manager starts modules in registration order and stops the ones that
// came up in reverse.
type Manager struct {
	mu      sync.Mutex
	pending []Module
	running []Module
	started bool
}

func NewManager(mods ...Module) *Manager {
	m := &Manager{}
	for _, mod := range mods {
		if mod != nil {
			m.pending = append(m.pending, mod)
		}
	}
	return m
}

// Add queues a module. Modules cannot join a running manager.
func (m *Manager) Add(mod Module) error {
	if mod == nil {
		return fmt.Errorf("actions: nil module")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("actions: cannot add module %s after start", mod.Name())
	}
	m.pending = append(m.pending, mod)
	return nil
}

// Names lists the queued modules, or the running ones once started.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	mods := m.pending
	if m.started {
		mods = m.running
	}
	names := make([]string, len(mods))
	for i, mod := range mods {
		names[i] = mod.Name()
	}
	return names
}

// Start brings every module up. On the first failure the modules already
// running are stopped again and the error is returned.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("actions: manager already started")
	}

	for _, mod := range m.pending {
		if err := mod.Start(ctx); err != nil {
			log.Printf("actions: %s module failed to start: %v", mod.Name(), err)
			m.stopRunning(ctx)
			return fmt.Errorf("module %s failed: %w", mod.Name(), err)
		}
		log.Printf("actions: %s module started", mod.Name())
		m.running = append(m.running, mod)
	}
	m.pending = nil
	m.started = true
	return nil
}

// Stop shuts the running modules down in reverse start order. It is safe to
// call more than once.
func (m *Manager) Stop(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopRunning(ctx)
}

func (m *Manager) stopRunning(ctx context.Context) {
	for i := len(m.running) - 1; i >= 0; i-- {
		mod := m.running[i]
		mod.Stop(ctx)
		log.Printf("actions: %s module stopped", mod.Name())
	}
	m.running = nil
}
