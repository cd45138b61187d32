package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/revittco/dsmon/internal/counters"
	"github.com/revittco/dsmon/internal/counters/ldapsource"
	"github.com/revittco/dsmon/internal/counters/snapshot"
	"github.com/revittco/dsmon/internal/render"
	"github.com/revittco/dsmon/internal/secrets"
	"github.com/spf13/cobra"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	stderr io.Writer

	asJSON       bool
	snapshotPath string
	url          string
	bindDN       string
	passwordFile string
	startTLS     bool
	concurrency  int

	cfg    *Config
	logger *slog.Logger
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	a := &app{stderr: stderr}

	root := &cobra.Command{
		Use:   "dsmon",
		Short: "Monitoring reports for 389 Directory Server databases",
		Long: `dsmon reads the cn=monitor counters of a 389 Directory Server instance
and reports database, entry, DN and index cache health.

Example:
  dsmon dbmon --backends "userroot dc=example,dc=com" --indexes
  dsmon --json server --just-resources
  dsmon --snapshot capture.yaml dbmon`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.asJSON, "json", "j", false, "write JSON instead of text")
	pf.StringVar(&a.snapshotPath, "snapshot", "", "read counters from a YAML snapshot instead of the server")
	pf.StringVarP(&a.url, "url", "H", "", "server URL (ldap://, ldaps:// or ldapi://)")
	pf.StringVarP(&a.bindDN, "bind-dn", "D", "", "bind DN")
	pf.StringVarP(&a.passwordFile, "password-file", "y", "", "file holding the bind password")
	pf.BoolVarP(&a.startTLS, "starttls", "Z", false, "issue StartTLS on an ldap:// connection")
	pf.IntVar(&a.concurrency, "concurrency", 0, "parallel backend queries")

	root.AddCommand(
		newDBMonCmd(a),
		newLDBMCmd(a),
		newBackendCmd(a),
		newSNMPCmd(a),
		newChainingCmd(a),
		newDiskCmd(a),
		newServerCmd(a),
		newSecretCmd(a),
	)
	return root
}

// setup loads configuration, applies flag overrides, and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fc := cfg.File
	flags := cmd.Flags()
	if flags.Changed("url") {
		fc.Server.URL = a.url
	}
	if flags.Changed("bind-dn") {
		fc.Server.BindDN = a.bindDN
	}
	if flags.Changed("password-file") {
		fc.Server.BindPasswordFile = a.passwordFile
	}
	if flags.Changed("starttls") {
		fc.Server.StartTLS = a.startTLS
	}
	if flags.Changed("concurrency") {
		fc.Report.Concurrency = a.concurrency
	}
	if err := fc.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})).With("run_id", uuid.NewString())
	slog.SetDefault(a.logger)
	return nil
}

func (a *app) format() render.Format {
	return render.FormatFor(a.asJSON)
}

// openSource returns the counter source for this invocation and a function
// releasing it.
func (a *app) openSource(ctx context.Context) (counters.FullSource, func(), error) {
	if a.snapshotPath != "" {
		snap, err := snapshot.Load(a.snapshotPath)
		if err != nil {
			return nil, nil, err
		}
		a.logger.Debug("using snapshot", "file", a.snapshotPath)
		return snap, func() {}, nil
	}

	srv := a.cfg.File.Server
	password, err := a.bindPassword()
	if err != nil {
		return nil, nil, err
	}
	src, err := ldapsource.Dial(ctx, ldapsource.Config{
		URL:                srv.URL,
		BindDN:             srv.BindDN,
		BindPassword:       password,
		StartTLS:           srv.StartTLS,
		InsecureSkipVerify: srv.InsecureSkipVerify,
		Timeout:            srv.Timeout(),
	})
	if err != nil {
		return nil, nil, err
	}
	return src, func() { _ = src.Close() }, nil
}

func (a *app) bindPassword() (string, error) {
	fc := a.cfg.File
	if fc.Server.BindPasswordFile == "" {
		return a.cfg.BindPassword, nil
	}
	var dec *secrets.AgeEncryptor
	if fc.AgeIdentity != "" {
		var err error
		if dec, err = secrets.NewAgeEncryptor(fc.AgeIdentity); err != nil {
			return "", fmt.Errorf("create decryptor: %w", err)
		}
	}
	return secrets.ReadPassword(fc.Server.BindPasswordFile, dec)
}

// withSource opens the source, runs fn, and releases the source.
func (a *app) withSource(cmd *cobra.Command, fn func(ctx context.Context, src counters.FullSource) error) error {
	ctx := cmd.Context()
	src, release, err := a.openSource(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx, src)
}
