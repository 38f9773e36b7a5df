package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"

	application "github.com/ZoeBambery/cyberduck/internal/app"
	"github.com/ZoeBambery/cyberduck/internal/config"
	"github.com/ZoeBambery/cyberduck/internal/logging"
	"github.com/ZoeBambery/cyberduck/internal/queue"
	"github.com/ZoeBambery/cyberduck/internal/transfer"
)

var Version = "1.0.0"

const usage = `Usage: cyberduck [flags] <command> [args]

Commands:
  get <server> <remote> [local]   download a file or directory
  put <server> <local> [remote]   upload a file or directory
  edit <server> <remote>          edit a remote file, uploading on save
  queue [clear | rm <id>]         list or prune the transfer queue
  init                            write an example config file

Flags:
`

func main() {
	showVersion := flag.Bool("version", false, "Show version")
	configPath := flag.String("config", config.DefaultPath(), "Config file")
	action := flag.String("action", "", "Action for existing files: ask, overwrite, resume, rename, rename-existing, skip")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("cyberduck %s\n", Version)
		return
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, *action, *logLevel, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, action, logLevel string, args []string) error {
	if args[0] == "init" {
		return initConfig(configPath)
	}

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := logging.Init(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.Path,
	}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Sync()
	application.Version = Version

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "get", "put", "download", "upload":
		req, err := transferRequest(cfg, cmd, action, rest)
		if err != nil {
			return err
		}
		q, err := queue.Open(cfg.QueueDir)
		if err != nil {
			// another instance may hold the queue
			logging.Warn("queue unavailable", logging.Err(err))
			q = nil
		} else {
			defer q.Close()
		}
		a := application.New(cfg, q)
		return a.Run(func(ctx context.Context) error {
			return a.Transfer(ctx, req)
		})

	case "edit":
		if len(rest) != 2 {
			return errors.New("usage: edit <server> <remote>")
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return application.New(cfg, nil).Edit(ctx, rest[0], rest[1])

	case "queue":
		return queueCommand(cfg, rest)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func transferRequest(cfg *config.Config, cmd, action string, args []string) (application.Request, error) {
	if len(args) < 2 || len(args) > 3 {
		return application.Request{}, fmt.Errorf("usage: %s <server> <path> [target]", cmd)
	}

	dir, err := transfer.ParseDirection(cmd)
	if err != nil {
		return application.Request{}, err
	}
	req := application.Request{Server: args[0], Direction: dir}
	var item queue.Item
	if dir == transfer.Download {
		item.Remote = args[1]
		item.Local = path.Base(args[1])
		if len(args) == 3 {
			item.Local = args[2]
		}
		if action == "" {
			action = cfg.Transfer.DownloadAction
		}
	} else {
		item.Local = args[1]
		item.Remote = filepath.Base(args[1])
		if len(args) == 3 {
			item.Remote = args[2]
		}
		if action == "" {
			action = cfg.Transfer.UploadAction
		}
	}

	local, err := filepath.Abs(item.Local)
	if err != nil {
		return req, err
	}
	item.Local = local
	req.Items = []queue.Item{item}

	req.Action, err = transfer.ParseAction(action)
	return req, err
}

func queueCommand(cfg *config.Config, args []string) error {
	q, err := queue.Open(cfg.QueueDir)
	if err != nil {
		return err
	}
	defer q.Close()

	if len(args) == 0 {
		return application.PrintQueue(os.Stdout, q)
	}
	switch args[0] {
	case "clear":
		n, err := q.Clear()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d entries.\n", n)
		return nil
	case "rm":
		if len(args) != 2 {
			return errors.New("usage: queue rm <id>")
		}
		return q.Remove(args[1])
	default:
		return fmt.Errorf("unknown queue command %q", args[0])
	}
}

func initConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	cfg := config.Default()
	cfg.Servers = []config.ServerConfig{{
		Name:     "example",
		Protocol: config.ProtocolSFTP,
		Host:     "sftp.example.org",
		Port:     22,
		User:     "me",
	}}
	if err := config.SaveTo(path, cfg); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
