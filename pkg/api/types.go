package api

import "github.com/fagerli/flagstore/pkg/store"

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
}

// FlagReader defines the lookups the server needs from a loaded store
type FlagReader interface {
	Container() string
	GetPackage(name string) (*store.PackageInfo, error)
	GetFlag(pkg, flag string) (*store.FlagInfo, error)
	Stats() store.Stats
}
