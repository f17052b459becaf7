// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package scenario

import (
	"fmt"
	"io"
	"text/tabwriter"
)

const (
	colorRed   = "\x1b[31m"
	colorGreen = "\x1b[32m"
	colorReset = "\x1b[0m"
)

// Write writes a human readable report to w, one line per scenario followed
// by a summary. Failures are detailed after the scenario list. If color is
// true, PASS and FAIL are colored with ANSI escape sequences.
//
func (r *Report) Write(w io.Writer, color bool) error {
	status := func(ok bool) string {
		s, c := "PASS", colorGreen
		if !ok {
			s, c = "FAIL", colorRed
		}
		if color {
			return c + s + colorReset
		}
		return s
	}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for i := range r.Results {
		res := &r.Results[i]
		fmt.Fprintf(tw, "%s\t%s\t%d edges\t%v\t%v\n", status(res.Passed()), res.Name, res.Edges, res.Time, res.Duration)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for i := range r.Results {
		if res := &r.Results[i]; !res.Passed() {
			if _, err := fmt.Fprintf(w, "--- %s %s: %v\n", status(false), res.Name, res.Err); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "%s run %s seed %d: %d scenarios, %d failed in %v\n",
		status(r.Failed() == 0), r.RunID, r.Seed, len(r.Results), r.Failed(), r.Duration)
	return err
}
