package transfer

import (
	"context"
	"time"

	"github.com/ZoeBambery/cyberduck/internal/fileops"
	"github.com/ZoeBambery/cyberduck/internal/logging"
)

// Result summarizes a finished run.
type Result struct {
	Files   int
	Dirs    int
	Bytes   int64
	Skipped int
}

// Run transfers every root under the given action. Items marked Skipped
// are left out together with their children. Callback is not accepted.
func (t *Transfer) Run(ctx context.Context, a Action, onProgress func(fileops.Progress)) (Result, error) {
	var res Result
	f, err := t.Filter(a)
	if err != nil {
		return res, err
	}

	start := time.Now()
	var plan []*Path
	for _, root := range t.roots {
		if err := t.plan(ctx, root, f, &plan, &res); err != nil {
			return res, err
		}
	}

	fileCount := 0
	for _, p := range plan {
		if !p.attrs.IsDir() {
			fileCount++
		}
	}

	fileIndex := 0
	for _, p := range plan {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		srcFS, src, dstFS, dst := t.endpoints(p)

		if p.attrs.IsDir() {
			if err := fileops.MkDir(dstFS, dst); err != nil {
				return res, err
			}
			res.Dirs++
		} else {
			fileIndex++
			var progress func(fileops.Progress)
			if onProgress != nil {
				idx := fileIndex
				progress = func(pr fileops.Progress) {
					pr.FileIndex = idx
					pr.FileCount = fileCount
					onProgress(pr)
				}
			}
			n, err := fileops.Copy(ctx, srcFS, src, dstFS, dst, p.Status.Offset, progress)
			res.Bytes += n
			if err != nil {
				return res, err
			}
			res.Files++
		}

		p.Status.Complete = true
		if t.dir == Upload {
			t.session.Invalidate(dstFS.Dir(dst))
		}
	}

	logging.Info("transfer complete",
		logging.String("direction", t.dir.String()),
		logging.String("action", a.String()),
		logging.Int("files", res.Files),
		logging.Int("skipped", res.Skipped),
		logging.Int64("bytes", res.Bytes),
		logging.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (t *Transfer) plan(ctx context.Context, p *Path, f Filter, plan *[]*Path, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Skipped {
		res.Skipped++
		return nil
	}

	ok, err := f.Accept(p)
	if err != nil {
		return err
	}
	if ok {
		if err := f.Prepare(p); err != nil {
			return err
		}
		logging.Debug("planned",
			logging.String("path", p.Remote),
			logging.Bool("resume", p.Status.Resume),
			logging.Int64("offset", p.Status.Offset))
		*plan = append(*plan, p)
	} else if !p.attrs.IsDir() {
		res.Skipped++
	}

	if !p.attrs.IsDir() {
		return nil
	}
	children, err := t.Children(p)
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := t.plan(ctx, c, f, plan, res); err != nil {
			return err
		}
	}
	return nil
}
