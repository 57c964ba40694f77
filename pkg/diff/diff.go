// Package diff renders before/after state snapshots as unified diff text
// for reporting. The reconciler decides *whether* something changed;
// this package only formats the evidence.
package diff

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	maxLines        = 4000
	truncateMessage = "... (diff truncated) ..."
)

// RenderOptions produces a unified diff between two option-name → value
// maps. Keys are emitted sorted so output is deterministic. Returns an
// empty string when both sides render identically.
func RenderOptions(before, after map[string]string) string {
	return Unified(formatOptions(before), formatOptions(after), "before", "after")
}

// Unified generates unified-diff formatted output comparing two texts.
// Returns an empty string when the texts are equal.
func Unified(before, after, beforeLabel, afterLabel string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s\n", beforeLabel)
	fmt.Fprintf(&buf, "+++ %s\n", afterLabel)

	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitLines(d.Text) {
			buf.WriteString(prefix)
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}

	return truncate(buf.String())
}

func formatOptions(opts map[string]string) string {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(" - ")
		sb.WriteString(opts[k])
		sb.WriteString("\n")
	}
	return sb.String()
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" && strings.HasSuffix(text, "\n") {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func truncate(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= maxLines {
		return text
	}
	return strings.Join(lines[:maxLines], "\n") + "\n" + truncateMessage + "\n"
}
