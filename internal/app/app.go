package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/rivo/tview"

	"github.com/ZoeBambery/cyberduck/internal/config"
	"github.com/ZoeBambery/cyberduck/internal/dialog"
	"github.com/ZoeBambery/cyberduck/internal/logging"
	"github.com/ZoeBambery/cyberduck/internal/queue"
	"github.com/ZoeBambery/cyberduck/internal/theme"
	"github.com/ZoeBambery/cyberduck/internal/transfer"
	"github.com/ZoeBambery/cyberduck/internal/vfs"
)

// App is the main application struct that ties everything together.
type App struct {
	TviewApp *tview.Application
	Pages    *tview.Pages
	Status   *tview.TextView

	Config  *config.Config
	ConnMgr *vfs.ConnMgr
	Queue   *queue.Store

	ModalOpen bool

	// dial opens a server connection; tests replace it.
	dial func(ctx context.Context, srv config.ServerConfig) (vfs.FileSystem, error)
	// password asks for a login password after the server refused one.
	password func(ctx context.Context, srv config.ServerConfig) (string, error)

	mu        sync.Mutex
	cancel    context.CancelFunc
	err       error
	uiRunning bool
}

var Version string

// New creates the application. q may be nil to run without a persistent queue.
func New(cfg *config.Config, q *queue.Store) *App {
	a := &App{
		TviewApp: tview.NewApplication(),
		ConnMgr:  vfs.NewConnMgr(),
		Config:   cfg,
		Queue:    q,
	}
	a.dial = a.ConnMgr.Connect
	a.password = a.askPassword
	a.buildLayout()
	a.SetupKeyBindings()
	return a
}

func (a *App) buildLayout() {
	a.Status = tview.NewTextView()
	a.Status.SetTextAlign(tview.AlignCenter)
	a.Status.SetBackgroundColor(theme.ColorListBg)
	a.Status.SetTextColor(theme.ColorHeaderFg)
	a.Status.SetBorder(true)
	a.Status.SetBorderColor(theme.ColorDialogBorder)
	a.Status.SetTitle(" cyberduck " + Version + " ")

	a.Pages = tview.NewPages().
		AddPage("main", a.Status, true, true)
}

// Run starts the UI and the given job on its own goroutine. It returns
// when the UI stops, with the job's error.
func (a *App) Run(job func(ctx context.Context) error) error {
	defer a.ConnMgr.DisconnectAll()

	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	a.mu.Lock()
	a.uiRunning = true
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := job(ctx); err != nil {
			a.fail(err)
		}
	}()

	err := a.TviewApp.SetRoot(a.Pages, true).Run()
	a.mu.Lock()
	a.uiRunning = false
	a.mu.Unlock()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		logging.Warn("job did not stop in time")
	}
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Cancel aborts the running job.
func (a *App) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

// queueUpdateDraw runs f on the UI goroutine, or directly when the UI
// is not running.
func (a *App) queueUpdateDraw(f func()) {
	a.mu.Lock()
	running := a.uiRunning
	a.mu.Unlock()
	if !running {
		f()
		return
	}
	a.TviewApp.QueueUpdateDraw(f)
}

func (a *App) setStatus(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	a.queueUpdateDraw(func() {
		a.Status.SetText("\n" + text)
	})
}

// showDialog adds a dialog page and focuses it.
func (a *App) showDialog(name string, p tview.Primitive) {
	a.ModalOpen = true
	a.Pages.AddPage(name, p, true, true)
	a.TviewApp.SetFocus(p)
}

// closeDialog removes a dialog page and returns focus to the status view.
func (a *App) closeDialog(name string) {
	a.Pages.RemovePage(name)
	a.ModalOpen = false
	a.TviewApp.SetFocus(a.Status)
}

// fail records err and shows it; closing the dialog stops the UI.
func (a *App) fail(err error) {
	a.mu.Lock()
	a.err = err
	a.mu.Unlock()
	logging.Error("job failed", logging.Err(err))

	a.queueUpdateDraw(func() {
		dialog.ShowError(a.Pages, err, func() {
			a.closeDialog("error")
			a.TviewApp.Stop()
		})
		a.ModalOpen = true
		a.TviewApp.SetFocus(a.Pages)
	})
}

// finish shows a summary; closing it stops the UI.
func (a *App) finish(title, message string) {
	a.queueUpdateDraw(func() {
		dialog.ShowInfo(a.Pages, title, message, func() {
			a.closeDialog("info")
			a.TviewApp.Stop()
		})
		a.ModalOpen = true
		a.TviewApp.SetFocus(a.Pages)
	})
}

// maxLoginAttempts bounds how often a refused login is retried with a
// password typed at the prompt.
const maxLoginAttempts = 3

// connect opens the configured server. SFTP and FTP logins the server
// refuses are retried with a password from the login dialog.
func (a *App) connect(ctx context.Context, name string) (*transfer.Session, error) {
	srv, ok := a.Config.Server(name)
	if !ok {
		return nil, fmt.Errorf("unknown server %q", name)
	}
	for attempt := 0; ; attempt++ {
		fs, err := a.dial(ctx, srv)
		if err == nil {
			return transfer.NewSession(srv.Name, fs), nil
		}
		if !errors.Is(err, vfs.ErrAuth) || srv.Protocol == config.ProtocolS3 || attempt == maxLoginAttempts {
			return nil, fmt.Errorf("connect %s: %w", name, err)
		}
		logging.Warn("login refused", logging.String("server", name), logging.Err(err))
		pw, err := a.password(ctx, srv)
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", name, err)
		}
		srv.Password = pw
	}
}

// errLoginCancelled is returned when the login dialog is dismissed.
var errLoginCancelled = errors.New("login cancelled")

// askPassword shows the login dialog and waits for the password.
func (a *App) askPassword(ctx context.Context, srv config.ServerConfig) (string, error) {
	type answer struct {
		password string
		ok       bool
	}
	done := make(chan answer, 1)
	a.queueUpdateDraw(func() {
		dialog.ShowPasswordDialog(a.Pages, srv.Name, srv.User, func(pw string) {
			a.closeDialog("password")
			done <- answer{password: pw, ok: true}
		}, func() {
			a.closeDialog("password")
			done <- answer{}
		})
		a.ModalOpen = true
		a.TviewApp.SetFocus(a.Pages)
	})

	select {
	case ans := <-done:
		if !ans.ok {
			return "", errLoginCancelled
		}
		return ans.password, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// excludePattern compiles the configured skip pattern.
func (a *App) excludePattern() (*regexp.Regexp, error) {
	if a.Config.Transfer.SkipPattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(a.Config.Transfer.SkipPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid skip pattern: %w", err)
	}
	return re, nil
}
