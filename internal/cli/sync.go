package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/mmynk/debtfree/internal/cloudsync"
	"github.com/mmynk/debtfree/internal/storage/sqlite"
)

type uploadCmd struct{}

func (*uploadCmd) Name() string     { return "upload" }
func (*uploadCmd) Synopsis() string { return "replace the cloud dataset with the local one" }
func (*uploadCmd) Usage() string {
	return `upload

  Pushes the entire local dataset to the cloud in one atomic batch.
  Uses your logged-in partition, or the project-wide target set with
  sync-config.
`
}
func (*uploadCmd) SetFlags(_ *flag.FlagSet) {}

func (c *uploadCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path, err := localDBPath()
	if err != nil {
		return fail(err)
	}
	local, err := sqlite.New(path)
	if err != nil {
		return fail(err)
	}
	defer local.Close()

	target, err := remoteTarget()
	if err != nil {
		return fail(err)
	}

	report := cloudsync.Upload(ctx, local, target)
	if !report.Success {
		fmt.Println("Upload failed:", report.Error)
		return subcommands.ExitFailure
	}
	fmt.Printf("Uploaded %d records\n", report.Records)
	return subcommands.ExitSuccess
}

type downloadCmd struct{}

func (*downloadCmd) Name() string     { return "download" }
func (*downloadCmd) Synopsis() string { return "replace the local dataset with the cloud one" }
func (*downloadCmd) Usage() string {
	return `download

  Pulls the cloud dataset into the local database. Cloud records win
  over local edits with the same id.
`
}
func (*downloadCmd) SetFlags(_ *flag.FlagSet) {}

func (c *downloadCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	path, err := localDBPath()
	if err != nil {
		return fail(err)
	}
	local, err := sqlite.New(path)
	if err != nil {
		return fail(err)
	}
	defer local.Close()

	target, err := remoteTarget()
	if err != nil {
		return fail(err)
	}

	report := cloudsync.Download(ctx, target, local)
	if !report.Success {
		fmt.Println("Download failed:", report.Error)
		return subcommands.ExitFailure
	}
	fmt.Printf("Downloaded %d records\n", report.Records)
	return subcommands.ExitSuccess
}

type syncConfigCmd struct {
	server string
	key    string
}

func (*syncConfigCmd) Name() string     { return "sync-config" }
func (*syncConfigCmd) Synopsis() string { return "set or show the project-wide sync target" }
func (*syncConfigCmd) Usage() string {
	return `sync-config [-server <url> -key <sync key>]

  With flags, saves the project-wide sync target used by upload and
  download when nobody is logged in. Without flags, shows the current
  target.
`
}

func (c *syncConfigCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.server, "server", "", "Sync server base URL")
	f.StringVar(&c.key, "key", "", "Project sync key")
}

func (c *syncConfigCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.server == "" && c.key == "" {
		cfg, err := loadSyncConfig()
		if err != nil {
			return fail(err)
		}
		if cfg == nil {
			fmt.Println("No sync target configured.")
			return subcommands.ExitSuccess
		}
		fmt.Println("Server:", cfg.Server)
		fmt.Println("Key:   ", cfg.SyncKey)
		return subcommands.ExitSuccess
	}
	if c.server == "" || c.key == "" {
		return usageError("-server and -key must be set together")
	}
	if err := saveSyncConfig(SyncConfig{Server: c.server, SyncKey: c.key}); err != nil {
		return fail(err)
	}
	fmt.Println("Sync target saved")
	return subcommands.ExitSuccess
}
