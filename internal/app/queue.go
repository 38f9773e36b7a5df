package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/ZoeBambery/cyberduck/internal/queue"
)

// PrintQueue writes the queued transfers as a table, oldest first.
func PrintQueue(w io.Writer, q *queue.Store) error {
	entries, err := q.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "Queue is empty.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDIRECTION\tSERVER\tITEMS\tSTATUS\tSIZE\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.Direction,
			e.Server,
			itemsText(e.Items),
			e.Status,
			progressText(e),
			humanize.Time(e.Created),
		)
	}
	return tw.Flush()
}

func itemsText(items []queue.Item) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Remote)
	}
	text := strings.Join(names, ", ")
	if len(text) > 40 {
		text = text[:37] + "..."
	}
	return text
}

func progressText(e queue.Entry) string {
	if e.Transferred == 0 || e.Transferred == e.Size {
		return humanize.IBytes(uint64(e.Size))
	}
	return humanize.IBytes(uint64(e.Transferred)) + "/" + humanize.IBytes(uint64(e.Size))
}
