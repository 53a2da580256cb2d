package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/killo431/profilesave/internal/config"
)

// DiscoverTargets enumerates the profile directories under the configured
// source root, excluding system and service-account profiles. The result
// is sorted by name.
func DiscoverTargets(cfg *config.Config) ([]Target, error) {
	entries, err := os.ReadDir(cfg.SourceRoot)
	if err != nil {
		return nil, fmt.Errorf("read profiles root %s: %w", cfg.SourceRoot, err)
	}

	targets := make([]Target, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || cfg.IsExcludedProfile(name) {
			continue
		}
		targets = append(targets, Target{
			Name:       name,
			SourceRoot: filepath.Join(cfg.SourceRoot, name),
		})
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })
	return targets, nil
}

// FilterTargets narrows discovered targets to the requested names
// ("all" or empty keeps everything). Requested names with no matching
// profile are reported back so the caller can warn about them.
func FilterTargets(targets []Target, requested []string) (selected []Target, missing []string) {
	if len(requested) == 0 {
		return targets, nil
	}
	for _, req := range requested {
		if strings.EqualFold(req, "all") {
			return targets, nil
		}
	}

	byName := make(map[string]Target, len(targets))
	for _, t := range targets {
		byName[strings.ToLower(t.Name)] = t
	}

	for _, req := range requested {
		req = strings.TrimSpace(req)
		if req == "" {
			continue
		}
		if t, ok := byName[strings.ToLower(req)]; ok {
			selected = append(selected, t)
		} else {
			missing = append(missing, req)
		}
	}
	return selected, missing
}
