package ldapsource

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/revittco/dsmon/internal/counters"
)

// Well-known entries of the directory server's cn=config and cn=monitor trees.
const (
	ldbmBase        = "cn=ldbm database,cn=plugins,cn=config"
	ldbmConfigDN    = "cn=config," + ldbmBase
	ldbmMonitorDN   = "cn=monitor," + ldbmBase
	chainingBase    = "cn=chaining database,cn=plugins,cn=config"
	configDN        = "cn=config"
	serverMonitorDN = "cn=monitor"
	snmpMonitorDN   = "cn=snmp,cn=monitor"
	diskMonitorDN   = "cn=disk space,cn=monitor"

	backendFilter = "(objectClass=nsBackendInstance)"
	anyFilter     = "(objectClass=*)"
)

// Compile-time check that Source satisfies counters.FullSource.
var _ counters.FullSource = (*Source)(nil)

// Config describes how to reach and authenticate to the server.
type Config struct {
	URL                string
	BindDN             string
	BindPassword       string
	StartTLS           bool
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Source reads monitor counters from a live server over LDAP. A single
// connection is shared; go-ldap multiplexes concurrent requests on it.
type Source struct {
	conn    *ldap.Conn
	timeout time.Duration
}

// Dial connects and binds to the server described by cfg.
func Dial(ctx context.Context, cfg Config) (*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	tlsConfig := &tls.Config{
		ServerName:         u.Hostname(),
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	conn, err := ldap.DialURL(cfg.URL,
		ldap.DialWithDialer(&net.Dialer{Timeout: timeout}),
		ldap.DialWithTLSConfig(tlsConfig))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.URL, err)
	}
	conn.SetTimeout(timeout)

	if cfg.StartTLS && u.Scheme != "ldaps" {
		if err := conn.StartTLS(tlsConfig); err != nil {
			conn.Close()
			return nil, fmt.Errorf("start tls: %w", err)
		}
	}

	if cfg.BindDN != "" {
		if err := conn.Bind(cfg.BindDN, cfg.BindPassword); err != nil {
			conn.Close()
			return nil, fmt.Errorf("bind as %s: %w", cfg.BindDN, err)
		}
	}

	slog.Debug("connected to directory server", "url", cfg.URL, "bind_dn", cfg.BindDN)
	return &Source{conn: conn, timeout: timeout}, nil
}

// Close closes the connection.
func (s *Source) Close() error {
	s.conn.Close()
	return nil
}

// ListBackends returns the LDBM backends in the order the server lists them.
func (s *Source) ListBackends(ctx context.Context) ([]counters.Backend, error) {
	return s.listInstances(ctx, ldbmBase)
}

// Engine reads nsslapd-backend-implement from the LDBM config entry.
func (s *Source) Engine(ctx context.Context) (counters.Engine, error) {
	set, err := s.readEntry(ctx, ldbmConfigDN, "nsslapd-backend-implement")
	if err != nil {
		return "", err
	}
	v, _ := set.First("nsslapd-backend-implement")
	return counters.ParseEngine(v), nil
}

// GlobalCounters reads the LDBM-wide monitor entry.
func (s *Source) GlobalCounters(ctx context.Context) (*counters.Set, error) {
	return s.readEntry(ctx, ldbmMonitorDN)
}

// BackendCounters reads the monitor entry of the named LDBM backend.
func (s *Source) BackendCounters(ctx context.Context, name string) (*counters.Set, error) {
	return s.readEntry(ctx, instanceMonitorDN(name, ldbmBase))
}

// FeatureEnabled reports whether the cn=config attribute attr is "on".
func (s *Source) FeatureEnabled(ctx context.Context, attr string) (bool, error) {
	set, err := s.readEntry(ctx, configDN, attr)
	if err != nil {
		return false, err
	}
	v, _ := set.First(attr)
	return strings.EqualFold(strings.TrimSpace(v), "on"), nil
}

// DiskPartitions returns the raw dsDisk lines of the disk monitor.
func (s *Source) DiskPartitions(ctx context.Context) ([]string, error) {
	set, err := s.readEntry(ctx, diskMonitorDN, "dsDisk")
	if err != nil {
		return nil, err
	}
	return set.Values("dsDisk"), nil
}

// ServerCounters reads cn=monitor.
func (s *Source) ServerCounters(ctx context.Context) (*counters.Set, error) {
	return s.readEntry(ctx, serverMonitorDN)
}

// SNMPCounters reads the SNMP monitor entry.
func (s *Source) SNMPCounters(ctx context.Context) (*counters.Set, error) {
	return s.readEntry(ctx, snmpMonitorDN)
}

// ListChainingLinks returns the chaining (database link) backends.
func (s *Source) ListChainingLinks(ctx context.Context) ([]counters.Backend, error) {
	return s.listInstances(ctx, chainingBase)
}

// ChainingCounters reads the monitor entry of the named database link.
func (s *Source) ChainingCounters(ctx context.Context, name string) (*counters.Set, error) {
	return s.readEntry(ctx, instanceMonitorDN(name, chainingBase))
}

func instanceMonitorDN(name, base string) string {
	return "cn=monitor,cn=" + ldap.EscapeDN(name) + "," + base
}

func (s *Source) listInstances(ctx context.Context, base string) ([]counters.Backend, error) {
	entries, err := s.search(ctx, base, ldap.ScopeSingleLevel, backendFilter, []string{"cn", "nsslapd-suffix"})
	if err != nil {
		return nil, err
	}
	return backendsFromEntries(entries), nil
}

// readEntry fetches a single entry by DN. With no attrs every user
// attribute is returned.
func (s *Source) readEntry(ctx context.Context, dn string, attrs ...string) (*counters.Set, error) {
	if len(attrs) == 0 {
		attrs = []string{"*"}
	}
	entries, err := s.search(ctx, dn, ldap.ScopeBaseObject, anyFilter, attrs)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("entry %s: %w", dn, counters.ErrNotFound)
	}
	return setFromEntry(entries[0]), nil
}

func (s *Source) search(ctx context.Context, base string, scope int, filter string, attrs []string) ([]*ldap.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req := ldap.NewSearchRequest(
		base,
		scope,
		ldap.NeverDerefAliases,
		0,
		int(s.timeout/time.Second),
		false,
		filter,
		attrs,
		nil,
	)
	res, err := s.conn.Search(req)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return nil, fmt.Errorf("entry %s: %w", base, counters.ErrNotFound)
		}
		return nil, fmt.Errorf("search %s: %w", base, err)
	}
	return res.Entries, nil
}

// setFromEntry copies an entry's attributes into a Set, keeping the order
// the server returned them in.
func setFromEntry(e *ldap.Entry) *counters.Set {
	set := counters.NewSet(e.DN)
	for _, attr := range e.Attributes {
		set.Add(attr.Name, attr.Values...)
	}
	return set
}

func backendsFromEntries(entries []*ldap.Entry) []counters.Backend {
	out := make([]counters.Backend, 0, len(entries))
	for _, e := range entries {
		out = append(out, counters.Backend{
			Name:   e.GetEqualFoldAttributeValue("cn"),
			Suffix: e.GetEqualFoldAttributeValue("nsslapd-suffix"),
		})
	}
	return out
}
