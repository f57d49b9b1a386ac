// Package status parses porcelain-style status streams and classifies the
// resulting entries into typed working-directory changes.
package status

import (
	"strings"
)

// Header is a branch/tracking metadata record from the status stream,
// e.g. key "branch.head" with value "main".
type Header struct {
	Key   string
	Value string
}

// FileEntry is a single raw change record from the status stream.
type FileEntry struct {
	Path          string
	OldPath       string // set only for rename/copy entries
	StatusCode    string // two-character XY code, '.' meaning unchanged
	SubmoduleCode string // four-character field ("N..." or "S<c><m><u>"), empty for untracked
	HeadMode      string // octal file mode in HEAD
	IndexMode     string // octal file mode in the index
	WorktreeMode  string // octal file mode in the worktree
	Unmerged      bool
}

// Record type prefixes in the stream.
const (
	prefixHeader    = "# "
	prefixOrdinary  = "1 "
	prefixRenamed   = "2 "
	prefixUnmerged  = "u "
	prefixUntracked = "? "
	prefixIgnored   = "! "
)

// Parse splits a NUL-delimited status stream into headers and file entries.
//
// Rename/copy records ("2 ...") consume the following record as the origin
// path; a trailing partial record (including a rename missing its origin) is
// dropped rather than failing the parse.
func Parse(raw []byte) ([]Header, []FileEntry) {
	records := strings.Split(string(raw), "\x00")

	// A well-formed stream ends with a NUL, leaving one empty trailing
	// element. Anything else at the tail is a truncated record.
	if n := len(records); n > 0 {
		records = records[:n-1]
	}

	var headers []Header
	var entries []FileEntry

	for i := 0; i < len(records); i++ {
		rec := records[i]
		switch {
		case strings.HasPrefix(rec, prefixHeader):
			if h, ok := parseHeader(rec); ok {
				headers = append(headers, h)
			}
		case strings.HasPrefix(rec, prefixOrdinary):
			if e, ok := parseOrdinary(rec); ok {
				entries = append(entries, e)
			}
		case strings.HasPrefix(rec, prefixRenamed):
			// The origin path travels in its own record; without it the
			// rename entry is unusable and every later record would
			// desynchronize, so consume both or neither.
			if i+1 >= len(records) {
				break
			}
			if e, ok := parseRenamed(rec, records[i+1]); ok {
				entries = append(entries, e)
			}
			i++
		case strings.HasPrefix(rec, prefixUnmerged):
			if e, ok := parseUnmerged(rec); ok {
				entries = append(entries, e)
			}
		case strings.HasPrefix(rec, prefixUntracked):
			entries = append(entries, FileEntry{
				Path:       rec[len(prefixUntracked):],
				StatusCode: "??",
			})
		case strings.HasPrefix(rec, prefixIgnored):
			// Ignored paths are not part of the working-directory map.
		default:
			// Unrecognized record shape: drop it, keep parsing.
		}
	}

	return headers, entries
}

func parseHeader(rec string) (Header, bool) {
	parts := strings.SplitN(rec[len(prefixHeader):], " ", 2)
	if len(parts) != 2 || parts[0] == "" {
		return Header{}, false
	}
	return Header{Key: parts[0], Value: parts[1]}, true
}

// parseOrdinary handles "1 XY sub mH mI mW hH hI path".
func parseOrdinary(rec string) (FileEntry, bool) {
	fields := strings.SplitN(rec, " ", 9)
	if len(fields) != 9 {
		return FileEntry{}, false
	}
	return FileEntry{
		Path:          fields[8],
		StatusCode:    fields[1],
		SubmoduleCode: fields[2],
		HeadMode:      fields[3],
		IndexMode:     fields[4],
		WorktreeMode:  fields[5],
	}, true
}

// parseRenamed handles "2 XY sub mH mI mW hH hI Xscore path" plus the
// separate origin-path record that follows it.
func parseRenamed(rec, origin string) (FileEntry, bool) {
	fields := strings.SplitN(rec, " ", 10)
	if len(fields) != 10 || origin == "" {
		return FileEntry{}, false
	}
	return FileEntry{
		Path:          fields[9],
		OldPath:       origin,
		StatusCode:    fields[1],
		SubmoduleCode: fields[2],
		HeadMode:      fields[3],
		IndexMode:     fields[4],
		WorktreeMode:  fields[5],
	}, true
}

// parseUnmerged handles "u XY sub m1 m2 m3 mW h1 h2 h3 path".
func parseUnmerged(rec string) (FileEntry, bool) {
	fields := strings.SplitN(rec, " ", 11)
	if len(fields) != 11 {
		return FileEntry{}, false
	}
	return FileEntry{
		Path:          fields[10],
		StatusCode:    fields[1],
		SubmoduleCode: fields[2],
		HeadMode:      fields[4], // stage 2 (ours)
		IndexMode:     fields[5], // stage 3 (theirs)
		WorktreeMode:  fields[6],
		Unmerged:      true,
	}, true
}
