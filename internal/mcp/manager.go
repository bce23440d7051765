package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"parley/internal/config"
	"parley/internal/fn"
	"parley/internal/logger"
)

// Manager coordinates the configured MCP servers and registers their
// tools as callable functions.
type Manager struct {
	clients  map[string]*Client
	registry *fn.Registry
	log      *logger.Logger
	mu       sync.RWMutex
}

// NewManager creates a new MCP manager registering into registry
func NewManager(registry *fn.Registry, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{
		clients:  make(map[string]*Client),
		registry: registry,
		log:      log,
	}
}

// Initialize connects to all enabled servers from config and registers
// their tools. Servers that fail to start are reported together; the
// ones that did start stay usable.
func (m *Manager) Initialize(ctx context.Context, cfg config.MCPConfig) error {
	if len(cfg.Servers) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(cfg.Servers))

	for _, serverCfg := range cfg.Servers {
		if serverCfg.Disabled {
			m.log.Debug("MCP server %s is disabled, skipping", serverCfg.Name)
			continue
		}

		wg.Add(1)
		go func(cfg config.MCPServerConfig) {
			defer wg.Done()
			if err := m.startServer(ctx, cfg); err != nil {
				errChan <- fmt.Errorf("server %s: %w", cfg.Name, err)
			}
		}(serverCfg)
	}

	wg.Wait()
	close(errChan)

	var errs []string
	for err := range errChan {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to start MCP servers: %s", strings.Join(errs, "; "))
	}

	m.log.Info("Connected to %d MCP server(s)", len(m.clients))
	return nil
}

// startServer connects one server and registers its tools
func (m *Manager) startServer(ctx context.Context, cfg config.MCPServerConfig) error {
	env := config.ExpandEnvMap(cfg.Env)

	client, err := NewClient(ctx, cfg.Name, cfg.Command, cfg.Args, env)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.clients[cfg.Name] = client
	m.mu.Unlock()

	for _, tool := range client.Tools() {
		f := AdaptTool(client, tool)
		if err := m.registry.Register(f); err != nil {
			m.log.Error("Skipping MCP tool %s: %v", f.Name(), err)
			continue
		}
		m.log.Debug("Registered MCP function %s", f.Name())
	}

	return nil
}

// Client returns a connected client by server name
func (m *Manager) Client(name string) (*Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[name]
	return c, ok
}

// Close shuts down all server sessions
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []string
	for name, client := range m.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
		}
		delete(m.clients, name)
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to close MCP clients: %s", strings.Join(errs, "; "))
	}
	return nil
}
