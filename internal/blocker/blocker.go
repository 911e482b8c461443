// Package blocker reports running programs that match the distraction
// list configured for study sessions. It only detects; it never kills.
package blocker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/go-ps"
)

// Processes that must never be reported, whatever the keywords say.
var safeList = []string{
	"windows", "system", "svchost.exe", "explorer.exe",
	"winlogon.exe", "csrss.exe", "services.exe", "lsass.exe",
	"dwm.exe", "smss.exe", "taskmgr.exe", "spoolsv.exe",
	"python.exe", "pythonw.exe", "pycharm", "code",
	"studywith",
}

var listProcesses = ps.Processes

// Hit is a running process that matched a keyword.
type Hit struct {
	PID     int
	Name    string
	Keyword string
}

type Scanner struct {
	keywords []string
}

// NewScanner lowercases and trims keywords, dropping blanks.
func NewScanner(keywords []string) *Scanner {
	s := &Scanner{}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			s.keywords = append(s.keywords, k)
		}
	}
	return s
}

func (s *Scanner) Keywords() []string {
	return s.keywords
}

// Match returns the first keyword contained in the process name.
// Safe-listed names never match.
func (s *Scanner) Match(name string) (string, bool) {
	lower := strings.ToLower(name)
	if lower == "" {
		return "", false
	}
	for _, safe := range safeList {
		if strings.Contains(lower, safe) {
			return "", false
		}
	}
	for _, k := range s.keywords {
		if strings.Contains(lower, k) {
			return k, true
		}
	}
	return "", false
}

// Scan lists running processes and returns the matches sorted by name.
func (s *Scanner) Scan() ([]Hit, error) {
	if len(s.keywords) == 0 {
		return nil, nil
	}
	procs, err := listProcesses()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	var hits []Hit
	for _, p := range procs {
		if p == nil {
			continue
		}
		if k, ok := s.Match(p.Executable()); ok {
			hits = append(hits, Hit{PID: p.Pid(), Name: p.Executable(), Keyword: k})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Name != hits[j].Name {
			return hits[i].Name < hits[j].Name
		}
		return hits[i].PID < hits[j].PID
	})
	return hits, nil
}
