// Package cli implements the debtfree command line application.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"github.com/mmynk/debtfree/internal/ledger"
	"github.com/mmynk/debtfree/internal/storage"
	"github.com/mmynk/debtfree/internal/storage/remote"
	"github.com/mmynk/debtfree/internal/storage/sqlite"
)

// Register the subcommands. A main package calls Register() and then
// Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&signupCmd{}, "account")
	c.Register(&loginCmd{}, "account")
	c.Register(&logoutCmd{}, "account")

	c.Register(&addPersonCmd{}, "people")
	c.Register(&peopleCmd{}, "people")
	c.Register(&rmPersonCmd{}, "people")

	c.Register(&lendCmd{}, "transactions")
	c.Register(&borrowedCmd{}, "transactions")
	c.Register(&editTxCmd{}, "transactions")
	c.Register(&rmTxCmd{}, "transactions")
	c.Register(&historyCmd{}, "transactions")
	c.Register(&balanceCmd{}, "transactions")

	c.Register(&addCardCmd{}, "cards")
	c.Register(&cardsCmd{}, "cards")
	c.Register(&rmCardCmd{}, "cards")

	c.Register(&uploadCmd{}, "sync")
	c.Register(&downloadCmd{}, "sync")
	c.Register(&syncConfigCmd{}, "sync")
}

// As a CLI application the lifecycle is short lived, so global flags are fine.

var dbFile = flag.String("db", "", "Path to the local database file (default: the user config dir)")
var localOnly = flag.Bool("local", false, "Operate on the local database even when logged in")

// configDir returns the directory holding the local database, the saved
// session and the sync configuration, creating it if needed.
func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	dir := filepath.Join(base, "debtfree")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

func localDBPath() (string, error) {
	if *dbFile != "" {
		return *dbFile, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "debtfree.db"), nil
}

func sessionPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// loadSession returns the saved login session, or nil when nobody is
// logged in.
func loadSession() (*remote.Session, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s remote.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	return &s, nil
}

func saveSession(s remote.Session) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func clearSession() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// SyncConfig holds the project-wide sync target used when no personal
// account is involved.
type SyncConfig struct {
	Server  string `json:"server"`
	SyncKey string `json:"syncKey"`
}

func syncConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sync.json"), nil
}

func loadSyncConfig() (*SyncConfig, error) {
	path, err := syncConfigPath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c SyncConfig
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse sync config: %w", err)
	}
	return &c, nil
}

func saveSyncConfig(c SyncConfig) error {
	path, err := syncConfigPath()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// openStore picks the backing store for read/write commands: the remote
// partition when logged in, the local database otherwise.
func openStore() (storage.Store, error) {
	if !*localOnly {
		session, err := loadSession()
		if err != nil {
			return nil, err
		}
		if session != nil {
			return session.Client(), nil
		}
	}
	path, err := localDBPath()
	if err != nil {
		return nil, err
	}
	return sqlite.New(path)
}

// openLedger opens the store and loads the full dataset into a ledger.
func openLedger(ctx context.Context) (*ledger.Ledger, func(), error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	l := ledger.New(store, slog.Default())
	l.Reload(ctx)
	return l, func() { store.Close() }, nil
}

// remoteTarget returns the remote store for upload/download: the logged-in
// user's partition, else the configured project-wide layout.
func remoteTarget() (*remote.Client, error) {
	session, err := loadSession()
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session.Client(), nil
	}
	cfg, err := loadSyncConfig()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, errors.New("not logged in and no sync config; run login or sync-config first")
	}
	return remote.ForProject(cfg.Server, cfg.SyncKey), nil
}

// findPerson resolves a person by id, then by case-insensitive name.
func findPerson(l *ledger.Ledger, idOrName string) (string, error) {
	if _, err := l.Person(idOrName); err == nil {
		return idOrName, nil
	}
	var match string
	for _, p := range l.People() {
		if strings.EqualFold(p.Name, idOrName) {
			if match != "" {
				return "", fmt.Errorf("name %q is ambiguous, use an id", idOrName)
			}
			match = p.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no person matching %q", idOrName)
	}
	return match, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return subcommands.ExitFailure
}

func usageError(msg string) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", msg)
	return subcommands.ExitUsageError
}
