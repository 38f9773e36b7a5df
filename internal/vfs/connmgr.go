package vfs

import (
	"context"
	"fmt"
	"sync"

	"github.com/ZoeBambery/cyberduck/internal/config"
	"github.com/ZoeBambery/cyberduck/internal/logging"
)

type dialFunc func(ctx context.Context, cfg config.ServerConfig) (FileSystem, error)

var dialers = map[string]dialFunc{
	config.ProtocolSFTP: func(ctx context.Context, cfg config.ServerConfig) (FileSystem, error) {
		return NewSFTPFS(ctx, cfg)
	},
	config.ProtocolFTP: func(ctx context.Context, cfg config.ServerConfig) (FileSystem, error) {
		return NewFTPFS(ctx, cfg)
	},
	config.ProtocolFTPS: func(ctx context.Context, cfg config.ServerConfig) (FileSystem, error) {
		return NewFTPFS(ctx, cfg)
	},
	config.ProtocolS3: func(ctx context.Context, cfg config.ServerConfig) (FileSystem, error) {
		return NewS3FS(ctx, cfg)
	},
}

// ConnMgr keeps one open connection per configured server name.
type ConnMgr struct {
	mu    sync.Mutex
	conns map[string]FileSystem
}

// NewConnMgr creates an empty connection manager.
func NewConnMgr() *ConnMgr {
	return &ConnMgr{conns: make(map[string]FileSystem)}
}

// Connect returns the open connection for cfg.Name, dialing on first use.
func (cm *ConnMgr) Connect(ctx context.Context, cfg config.ServerConfig) (FileSystem, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if fsys, ok := cm.conns[cfg.Name]; ok {
		return fsys, nil
	}

	dial, ok := dialers[cfg.Protocol]
	if !ok {
		return nil, fmt.Errorf("server %s: unknown protocol %q", cfg.Name, cfg.Protocol)
	}
	fsys, err := dial(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Name, err)
	}

	logging.Info("connected",
		logging.String("server", cfg.Name),
		logging.String("protocol", cfg.Protocol),
		logging.String("host", cfg.Host))
	cm.conns[cfg.Name] = fsys
	return fsys, nil
}

// DisconnectAll closes every open connection. Close errors are logged.
func (cm *ConnMgr) DisconnectAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for name, fsys := range cm.conns {
		if err := fsys.Close(); err != nil {
			logging.Warn("disconnect failed", logging.String("server", name), logging.Err(err))
		}
		delete(cm.conns, name)
	}
}
