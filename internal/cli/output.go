package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/usermap/internal/query"
)

const (
	ruleHeavy = "================================================================================"
	ruleLight = "--------------------------------------------------------------------------------"
	noAnswer  = "(no answer)"
)

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printResponses renders responses as text blocks: identifying fields,
// then each answer under its full column header.
func printResponses(w io.Writer, resps []query.Response) {
	for i, r := range resps {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, ruleHeavy)
		fmt.Fprintf(w, "user id: %d", r.UserID)
		if len(resps) > 1 {
			fmt.Fprintf(w, " (response %d of %d)", i+1, len(resps))
		}
		fmt.Fprintln(w)
		for _, d := range r.Display {
			fmt.Fprintf(w, "%s: %s\n", d.Column, d.Value)
		}
		fmt.Fprintln(w, ruleHeavy)

		for _, ans := range r.Answers {
			fmt.Fprintln(w)
			fmt.Fprintln(w, ans.Column)
			fmt.Fprintln(w, ruleLight)
			if strings.TrimSpace(ans.Value) == "" {
				fmt.Fprintln(w, noAnswer)
			} else {
				fmt.Fprintln(w, ans.Value)
			}
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, ruleHeavy)
	}
}

func joinInts(ids []int) string {
	if len(ids) == 0 {
		return "none"
	}
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = strconv.Itoa(id)
	}
	return strings.Join(s, ", ")
}

// nonNil keeps JSON output as [] rather than null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
