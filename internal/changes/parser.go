package changes

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/semcommit/semcommit/internal/types"
)

var (
	// diff --git a/old b/new
	fileHeaderRe = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)

	// @@ -oldStart[,oldLines] +newStart[,newLines] @@[ header]
	hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@ ?(.*)$`)
)

// ParseUnifiedDiff parses `git diff` output into Change records, one
// per file. Binary files yield a Change with no hunks. Hunks and lines
// keep their diff order.
func ParseUnifiedDiff(diff string) ([]types.Change, error) {
	var changes []types.Change
	var current *types.Change
	var hunk *types.Hunk

	flushHunk := func() {
		if current != nil && hunk != nil {
			current.Hunks = append(current.Hunks, *hunk)
		}
		hunk = nil
	}
	flushFile := func() {
		flushHunk()
		if current != nil {
			changes = append(changes, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(diff))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if m := fileHeaderRe.FindStringSubmatch(line); m != nil {
			flushFile()
			path := m[2]
			current = &types.Change{
				ID:   ChangeID(path),
				Path: path,
			}
			continue
		}

		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			if current == nil {
				return nil, fmt.Errorf("hunk header before file header: %q", line)
			}
			flushHunk()
			hunk = &types.Hunk{
				OldStart: atoiDefault(m[1], 0),
				OldLines: atoiDefault(m[2], 1),
				NewStart: atoiDefault(m[3], 0),
				NewLines: atoiDefault(m[4], 1),
				Header:   m[5],
			}
			continue
		}

		if hunk == nil {
			// File-level metadata: index lines, mode changes, rename
			// markers, ---/+++ paths, "Binary files ... differ".
			continue
		}

		switch {
		case strings.HasPrefix(line, "+"):
			hunk.Lines = append(hunk.Lines, types.DiffLine{Kind: types.LineAdded, Text: line[1:]})
		case strings.HasPrefix(line, "-"):
			hunk.Lines = append(hunk.Lines, types.DiffLine{Kind: types.LineRemoved, Text: line[1:]})
		case strings.HasPrefix(line, " "):
			hunk.Lines = append(hunk.Lines, types.DiffLine{Kind: types.LineContext, Text: line[1:]})
		case strings.HasPrefix(line, `\`):
			// "\ No newline at end of file"
		default:
			// A line that belongs to the next file's preamble.
			flushHunk()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan diff: %w", err)
	}
	flushFile()

	return changes, nil
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
