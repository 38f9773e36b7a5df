package prompt

import (
	"github.com/ZoeBambery/cyberduck/internal/transfer"
)

// Row is one line of the prompt list.
type Row struct {
	Path    *transfer.Path
	Depth   int
	Size    int64
	Warning bool
}

// Rows walks the transfer roots depth first and returns a row for every
// accepted item. Children are listed only below accepted directories.
func Rows(t *transfer.Transfer, m Model) ([]Row, error) {
	var rows []Row
	var walk func(items []*transfer.Path, depth int) error
	walk = func(items []*transfer.Path, depth int) error {
		for _, p := range items {
			ok, err := m.Filter().Accept(p)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			rows = append(rows, Row{
				Path:    p,
				Depth:   depth,
				Size:    m.Size(p),
				Warning: m.Warning(p),
			})
			if !p.Attributes().IsDir() {
				continue
			}
			children, err := t.Children(p)
			if err != nil {
				return err
			}
			if err := walk(children, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(t.Roots(), 0); err != nil {
		return nil, err
	}
	return rows, nil
}
