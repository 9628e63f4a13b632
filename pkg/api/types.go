package api

import (
	"github.com/lampe2020/l2db/pkg/store"
	"github.com/lampe2020/l2db/pkg/value"
)

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

// KeyStore defines the store operations the REST surface needs. It is
// satisfied by *store.Store.
type KeyStore interface {
	Read(key string, vtype value.Type) (value.Value, error)
	Write(key string, v value.Value, vtype value.Type) (value.Value, error)
	Delete(key string) (value.Value, error)
	Convert(key string, vtype value.Type) (value.Value, error)
	Keys() []string
	Cleanup(onlyFlag, dontRescue bool) (map[string]string, error)
	Flush() error
	Stat() store.Info
}
