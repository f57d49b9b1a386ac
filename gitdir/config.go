package gitdir

import (
	"os"
	"path/filepath"
	"strings"
)

// BranchUpstream returns the upstream short name ("origin/main") configured
// for a local branch, by reading the [branch "name"] section of the
// repository config. No configuration is a normal negative result.
func (d *Dir) BranchUpstream(branch string) (string, bool) {
	content, err := os.ReadFile(filepath.Join(d.GitDir, "config"))
	if err != nil {
		return "", false
	}

	var remote, merge string
	inSection := false
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section, subsection := parseSectionLine(line)
			inSection = section == "branch" && subsection == branch
			continue
		}
		if !inSection {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "remote":
			remote = strings.TrimSpace(value)
		case "merge":
			merge = strings.TrimSpace(value)
		}
	}

	if remote == "" || merge == "" {
		return "", false
	}
	return remote + "/" + strings.TrimPrefix(merge, "refs/heads/"), true
}

// parseSectionLine splits `[section "subsection"]` into its parts.
func parseSectionLine(line string) (string, string) {
	section := strings.Trim(line, "[]")
	name, sub, ok := strings.Cut(section, " ")
	if !ok {
		return name, ""
	}
	return name, strings.Trim(sub, "\"")
}
