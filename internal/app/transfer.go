package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ZoeBambery/cyberduck/internal/dialog"
	"github.com/ZoeBambery/cyberduck/internal/fileops"
	"github.com/ZoeBambery/cyberduck/internal/logging"
	"github.com/ZoeBambery/cyberduck/internal/prompt"
	"github.com/ZoeBambery/cyberduck/internal/queue"
	"github.com/ZoeBambery/cyberduck/internal/transfer"
)

// Request is one transfer as given on the command line.
type Request struct {
	Direction transfer.Direction
	Server    string
	Items     []queue.Item
	Action    transfer.Action
}

// Transfer connects, asks about existing files when needed and runs req
// with a progress dialog. A cancelled transfer is not an error.
func (a *App) Transfer(ctx context.Context, req Request) error {
	a.setStatus("Connecting to %s...", req.Server)
	s, err := a.connect(ctx, req.Server)
	if err != nil {
		return err
	}

	a.setStatus("Reading %s...", req.Server)
	t, err := a.newTransfer(s, req)
	if err != nil {
		return err
	}
	entry := a.record(req, t)

	action, err := t.Resolve(req.Action, func() (transfer.Action, error) {
		return a.ask(ctx, t)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.complete(entry, queue.StatusFailed, 0, err.Error())
		return err
	}
	if err != nil || action == transfer.Callback {
		a.complete(entry, queue.StatusCancelled, 0, "")
		a.finish("Cancelled", "Transfer cancelled.")
		return nil
	}
	if entry != nil {
		entry.Action = action.String()
	}

	res, err := a.execute(ctx, t, action, entry)
	switch {
	case errors.Is(err, context.Canceled):
		a.complete(entry, queue.StatusCancelled, res.Bytes, "")
		a.finish("Cancelled", "Transfer cancelled.\n"+summary(res))
		return nil
	case err != nil:
		a.complete(entry, queue.StatusFailed, res.Bytes, err.Error())
		return err
	}
	a.complete(entry, queue.StatusComplete, res.Bytes, "")
	a.finish("Done", summary(res))
	return nil
}

func (a *App) newTransfer(s *transfer.Session, req Request) (*transfer.Transfer, error) {
	if len(req.Items) == 0 {
		return nil, errors.New("nothing to transfer")
	}
	re, err := a.excludePattern()
	if err != nil {
		return nil, err
	}
	t := transfer.New(req.Direction, s)
	t.SetExclude(re)
	for _, item := range req.Items {
		if _, err := t.AddRoot(item.Remote, item.Local); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ask shows the transfer prompt and waits for the user's choice.
func (a *App) ask(ctx context.Context, t *transfer.Transfer) (transfer.Action, error) {
	model := prompt.NewModel(t.Direction(), prompt.DefaultRule{ShowHidden: a.Config.Transfer.ShowHidden})
	rows, err := prompt.Rows(t, model)
	if err != nil {
		return transfer.Callback, err
	}

	title := fmt.Sprintf("%s: %d existing", actionTitle(t.Direction()), len(rows))
	choice := make(chan transfer.Action, 1)
	a.queueUpdateDraw(func() {
		dialog.ShowTransferPrompt(a.Pages, title, rows, func(act transfer.Action) {
			a.closeDialog("transfer_prompt")
			choice <- act
		})
		a.ModalOpen = true
		a.TviewApp.SetFocus(a.Pages)
	})

	select {
	case act := <-choice:
		logging.Info("prompt answered", logging.String("action", act.String()))
		return act, nil
	case <-ctx.Done():
		return transfer.Callback, ctx.Err()
	}
}

func (a *App) execute(ctx context.Context, t *transfer.Transfer, action transfer.Action, entry *queue.Entry) (transfer.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pd := dialog.NewProgressDialog(actionTitle(t.Direction()), cancel)
	a.queueUpdateDraw(func() {
		a.showDialog("progress", pd)
	})
	a.complete(entry, queue.StatusRunning, 0, "")

	var lastUpdate time.Time
	res, err := t.Run(ctx, action, func(p fileops.Progress) {
		now := time.Now()
		if now.Sub(lastUpdate) < 100*time.Millisecond {
			return
		}
		lastUpdate = now
		a.queueUpdateDraw(func() {
			pd.Update(p)
		})
	})

	a.queueUpdateDraw(func() {
		a.closeDialog("progress")
	})
	return res, err
}

// record adds the transfer to the persistent queue. Queue failures are
// logged and do not stop the transfer.
func (a *App) record(req Request, t *transfer.Transfer) *queue.Entry {
	if a.Queue == nil {
		return nil
	}
	e := &queue.Entry{
		Direction: req.Direction.String(),
		Server:    req.Server,
		Items:     req.Items,
		Action:    req.Action.String(),
		Size:      rootSize(t),
	}
	if err := a.Queue.Add(e); err != nil {
		logging.Warn("queue add failed", logging.Err(err))
		return nil
	}
	return e
}

func (a *App) complete(e *queue.Entry, status queue.Status, transferred int64, message string) {
	if e == nil || a.Queue == nil {
		return
	}
	e.Status = status
	e.Transferred = transferred
	e.Message = message
	if err := a.Queue.Update(e); err != nil {
		logging.Warn("queue update failed", logging.String("id", e.ID), logging.Err(err))
	}
}

// rootSize sums the source sizes of the top-level files.
func rootSize(t *transfer.Transfer) int64 {
	var total int64
	for _, p := range t.Roots() {
		if !p.Attributes().IsFile() {
			continue
		}
		size := p.Attributes().Size
		if t.Direction() == transfer.Upload {
			size = p.Local.Attributes().Size
		}
		if size > 0 {
			total += size
		}
	}
	return total
}

func actionTitle(d transfer.Direction) string {
	if d == transfer.Upload {
		return "Uploading"
	}
	return "Downloading"
}

func summary(res transfer.Result) string {
	return fmt.Sprintf("%d files, %s transferred, %d skipped",
		res.Files, humanize.IBytes(uint64(res.Bytes)), res.Skipped)
}
