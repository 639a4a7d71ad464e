// Package featureflags evaluates the FEATURE_FLAGS setting.
//
// The setting is a comma-separated list of name=value pairs, for example
// "status_transitions=on,catalog_browse=25%". Values are on/off (also
// true/false and 1/0) or a percentage for a deterministic per-user rollout.
package featureflags

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Flags known to the API.
const (
	// StatusTransitions exposes PATCH /applications/:id/status.
	StatusTransitions = "status_transitions"
	// CatalogBrowse exposes the read-only company and position listings.
	CatalogBrowse = "catalog_browse"
	// ApplicationSummary exposes GET /applications/summary.
	ApplicationSummary = "application_summary"
)

// defaults apply when the setting does not mention a flag.
var defaults = map[string]string{
	StatusTransitions:  "on",
	CatalogBrowse:      "on",
	ApplicationSummary: "on",
}

type Manager struct {
	flags map[string]string
}

// NewManager parses raw on top of the built-in defaults. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	flags := make(map[string]string, len(defaults))
	for name, value := range defaults {
		flags[name] = value
	}
	for name, value := range parse(raw) {
		flags[name] = value
	}
	return &Manager{flags: flags}
}

func parse(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, value = normalize(name), normalize(value)
		if name == "" || value == "" {
			continue
		}
		out[name] = value
	}
	return out
}

// Enabled evaluates name for userID. Unknown flags are off. A percentage
// rollout never enables a flag for an anonymous caller (userID 0).
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pct, ok := percentage(value)
	switch {
	case !ok || pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return bucket(name, userID) < pct
}

func percentage(value string) (int, bool) {
	digits, found := strings.CutSuffix(value, "%")
	if !found {
		return 0, false
	}
	pct, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return pct, true
}

// Names lists the configured flags in sorted order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.flags))
	for name := range m.flags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot evaluates every configured flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
