package counters

import (
	"context"
	"strings"
)

// Backend identifies one storage backend of the server.
type Backend struct {
	Name   string `json:"name" yaml:"name"`
	Suffix string `json:"suffix" yaml:"suffix"`
}

// Engine is the database implementation backing the LDBM subsystem.
type Engine string

const (
	EngineBDB Engine = "bdb"
	EngineMDB Engine = "mdb"
)

// ParseEngine maps the server's nsslapd-backend-implement value to an
// Engine. Servers that predate the attribute only ship bdb.
func ParseEngine(s string) Engine {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mdb":
		return EngineMDB
	default:
		return EngineBDB
	}
}

// FeatureNDNCache is the cn=config switch for the normalized DN cache.
const FeatureNDNCache = "nsslapd-ndn-cache-enabled"

// Source supplies the raw counter snapshots a database report is built from.
type Source interface {
	ListBackends(ctx context.Context) ([]Backend, error)
	Engine(ctx context.Context) (Engine, error)
	GlobalCounters(ctx context.Context) (*Set, error)
	BackendCounters(ctx context.Context, name string) (*Set, error)
	FeatureEnabled(ctx context.Context, attr string) (bool, error)
	DiskPartitions(ctx context.Context) ([]string, error)
}

// StatusSource supplies the plain monitor entries dumped by the status
// commands.
type StatusSource interface {
	ServerCounters(ctx context.Context) (*Set, error)
	SNMPCounters(ctx context.Context) (*Set, error)
	ListChainingLinks(ctx context.Context) ([]Backend, error)
	ChainingCounters(ctx context.Context, name string) (*Set, error)
}

// FullSource is satisfied by both the LDAP and the snapshot sources.
type FullSource interface {
	Source
	StatusSource
}
