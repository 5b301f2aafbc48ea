package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
)

// Manager holds the live Drive connection: one client plus the resolved
// studio folder layout. The service runs fine disconnected; sync jobs and
// cloud listing report ErrNotConnected until a key file is provided.
type Manager struct {
	rootName string

	mu     sync.RWMutex
	client *Client
	layout Layout
}

var ErrNotConnected = fmt.Errorf("google drive not connected")

func NewManager(rootName string) *Manager {
	return &Manager{rootName: rootName}
}

// Connect builds a client from service account JSON and verifies the
// credentials with a token exchange. Replaces any previous connection.
func (m *Manager) Connect(ctx context.Context, accountJSON []byte) error {
	var account ServiceAccount
	if err := json.Unmarshal(accountJSON, &account); err != nil {
		return fmt.Errorf("parse service account JSON: %w", err)
	}

	client, err := NewClient(&account)
	if err != nil {
		return err
	}
	if err := client.Authenticate(ctx); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	m.mu.Lock()
	m.client = client
	m.layout = nil // stale folder IDs belong to the previous account
	m.mu.Unlock()
	return nil
}

// ConnectFromFile connects using a key file path, for startup configuration.
func (m *Manager) ConnectFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read service account file: %w", err)
	}
	return m.Connect(ctx, data)
}

// Disconnect drops the client and folder layout.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.client = nil
	m.layout = nil
	m.mu.Unlock()
}

// Client returns the connected client or ErrNotConnected.
func (m *Manager) Client() (*Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil {
		return nil, ErrNotConnected
	}
	return m.client, nil
}

// Setup ensures the studio folder tree exists and caches the layout.
func (m *Manager) Setup(ctx context.Context) (Layout, error) {
	client, err := m.Client()
	if err != nil {
		return nil, err
	}

	layout, err := EnsureStudioLayout(ctx, client, m.rootName)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.layout = layout
	m.mu.Unlock()
	log.Printf("[drive] studio layout ready under %q", m.rootName)
	return layout, nil
}

// Layout returns the cached folder layout, running Setup on first use.
func (m *Manager) Layout(ctx context.Context) (Layout, error) {
	m.mu.RLock()
	layout := m.layout
	m.mu.RUnlock()
	if layout != nil {
		return layout, nil
	}
	return m.Setup(ctx)
}

// Status describes the connection for the API.
type Status struct {
	Connected bool   `json:"connected"`
	Email     string `json:"email,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	Folders   Layout `json:"folders,omitempty"`
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil {
		return Status{Connected: false}
	}
	return Status{
		Connected: true,
		Email:     m.client.Email(),
		ProjectID: m.client.ProjectID(),
		Folders:   m.layout,
	}
}
