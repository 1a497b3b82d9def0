package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/yatube/yatube/internal/models"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func groupTable(w io.Writer, groups []models.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No groups found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tSLUG\tID")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", g.Title, g.Slug, g.ID)
	}
	tw.Flush()
}
