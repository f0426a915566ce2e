package app

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shashiranjanraj/laundry/pkg/router"
)

// PrintRoutes writes the route table of r.
func PrintRoutes(w io.Writer, r *router.Router) error {
	infos := r.Routes()
	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "No named routes registered.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tNAME")
	fmt.Fprintln(tw, "------\t----\t----")
	for _, ri := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return tw.Flush()
}
