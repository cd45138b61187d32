// Package snapshot serves counters from a YAML capture of a server's
// monitor entries, so reports can be produced without a live connection.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/revittco/dsmon/internal/counters"
	"gopkg.in/yaml.v3"
)

const (
	ldbmBase      = "cn=ldbm database,cn=plugins,cn=config"
	ldbmMonitorDN = "cn=monitor," + ldbmBase
	chainingBase  = "cn=chaining database,cn=plugins,cn=config"
)

// Compile-time check that Snapshot satisfies counters.FullSource.
var _ counters.FullSource = (*Snapshot)(nil)

// Snapshot is a point-in-time capture of everything a report reads.
type Snapshot struct {
	DBImpl   string            `yaml:"engine"`
	Features map[string]string `yaml:"features"`
	Global   entry             `yaml:"global"`
	Server   entry             `yaml:"server"`
	SNMP     entry             `yaml:"snmp"`
	Backends []instance        `yaml:"backends"`
	Chaining []instance        `yaml:"chaining"`
	Disks    []string          `yaml:"disks"`
}

type instance struct {
	Name     string `yaml:"name"`
	Suffix   string `yaml:"suffix"`
	Counters entry  `yaml:"counters"`
}

// entry is a monitor entry. Its YAML form is a mapping whose values are a
// scalar or a list of scalars; mapping order is the delivery order.
type entry struct {
	set *counters.Set
}

func (e *entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: counters must be a mapping", node.Line)
	}
	e.set = counters.NewSet("")
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			if key.Value == "dn" {
				e.set.DN = val.Value
				continue
			}
			e.set.Add(key.Value, val.Value)
		case yaml.SequenceNode:
			values := make([]string, 0, len(val.Content))
			for _, item := range val.Content {
				if item.Kind != yaml.ScalarNode {
					return fmt.Errorf("line %d: counter %q: values must be scalars", item.Line, key.Value)
				}
				values = append(values, item.Value)
			}
			e.set.Add(key.Value, values...)
		default:
			return fmt.Errorf("line %d: counter %q: unsupported value", val.Line, key.Value)
		}
	}
	return nil
}

// resolve fills in the entry's DN when the capture left it out.
func (e *entry) resolve(dn string) {
	if e.set == nil {
		e.set = counters.NewSet(dn)
	}
	if e.set.DN == "" {
		e.set.DN = dn
	}
}

// Load reads and parses a snapshot file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Parse(data)
}

// Parse parses snapshot YAML.
func Parse(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	s.Global.resolve(ldbmMonitorDN)
	s.Server.resolve("cn=monitor")
	s.SNMP.resolve("cn=snmp,cn=monitor")
	for i := range s.Backends {
		b := &s.Backends[i]
		if b.Name == "" {
			return nil, fmt.Errorf("parse snapshot: backends[%d]: name is required", i)
		}
		b.Counters.resolve("cn=monitor,cn=" + b.Name + "," + ldbmBase)
	}
	for i := range s.Chaining {
		c := &s.Chaining[i]
		if c.Name == "" {
			return nil, fmt.Errorf("parse snapshot: chaining[%d]: name is required", i)
		}
		c.Counters.resolve("cn=monitor,cn=" + c.Name + "," + chainingBase)
	}
	return &s, nil
}

func (s *Snapshot) ListBackends(_ context.Context) ([]counters.Backend, error) {
	return descriptors(s.Backends), nil
}

func (s *Snapshot) Engine(_ context.Context) (counters.Engine, error) {
	return counters.ParseEngine(s.DBImpl), nil
}

func (s *Snapshot) GlobalCounters(_ context.Context) (*counters.Set, error) {
	return s.Global.set, nil
}

func (s *Snapshot) BackendCounters(_ context.Context, name string) (*counters.Set, error) {
	inst, err := find(s.Backends, name)
	if err != nil {
		return nil, err
	}
	return inst.Counters.set, nil
}

func (s *Snapshot) FeatureEnabled(_ context.Context, attr string) (bool, error) {
	for k, v := range s.Features {
		if strings.EqualFold(k, attr) {
			return strings.EqualFold(strings.TrimSpace(v), "on"), nil
		}
	}
	return false, nil
}

func (s *Snapshot) DiskPartitions(_ context.Context) ([]string, error) {
	return s.Disks, nil
}

func (s *Snapshot) ServerCounters(_ context.Context) (*counters.Set, error) {
	return s.Server.set, nil
}

func (s *Snapshot) SNMPCounters(_ context.Context) (*counters.Set, error) {
	return s.SNMP.set, nil
}

func (s *Snapshot) ListChainingLinks(_ context.Context) ([]counters.Backend, error) {
	return descriptors(s.Chaining), nil
}

func (s *Snapshot) ChainingCounters(_ context.Context, name string) (*counters.Set, error) {
	inst, err := find(s.Chaining, name)
	if err != nil {
		return nil, err
	}
	return inst.Counters.set, nil
}

func descriptors(in []instance) []counters.Backend {
	out := make([]counters.Backend, len(in))
	for i, b := range in {
		out[i] = counters.Backend{Name: b.Name, Suffix: b.Suffix}
	}
	return out
}

func find(in []instance, name string) (*instance, error) {
	for i := range in {
		if strings.EqualFold(in[i].Name, name) {
			return &in[i], nil
		}
	}
	return nil, fmt.Errorf("instance %q: %w", name, counters.ErrNotFound)
}
