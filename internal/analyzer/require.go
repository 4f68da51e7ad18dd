package analyzer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/navid-m/liger/internal/workspace"
)

// requireResolution is the result of resolving a `require "..."` path.
type requireResolution struct {
	Path           string
	Classification string // "relative" | "shard" | "stdlib-or-unknown"
	Shard          *workspace.ShardManifest
}

// resolveRequire implements the require-path resolution shared by
// goto-definition step 1 and hover step 1 (spec.md §4.F, §4.H).
func (a *Analyzer) resolveRequire(requirePath, currentFile string) requireResolution {
	if strings.HasPrefix(requirePath, ".") {
		base := filepath.Dir(currentFile)
		candidate := filepath.Join(base, requirePath)
		resolved := firstExisting(candidate+".cr", candidate, filepath.Join(candidate, filepath.Base(candidate)+".cr"))
		return requireResolution{Path: resolved, Classification: "relative"}
	}

	shardName := requirePath
	if i := strings.Index(requirePath, "/"); i >= 0 {
		shardName = requirePath[:i]
	}
	shardDir := filepath.Join(a.root, "lib", shardName)
	if info, err := os.Stat(shardDir); err == nil && info.IsDir() {
		rest := strings.TrimPrefix(requirePath, shardName)
		rest = strings.TrimPrefix(rest, "/")
		var candidate string
		if rest == "" {
			candidate = filepath.Join(shardDir, "src", shardName+".cr")
		} else {
			candidate = filepath.Join(shardDir, "src", rest+".cr")
		}
		resolved := firstExisting(candidate, filepath.Join(shardDir, "src", rest))
		manifest := workspace.ParseShardYML(filepath.Join(shardDir, "shard.yml"))
		return requireResolution{Path: resolved, Classification: "shard", Shard: manifest}
	}

	if a.index != nil {
		if found, ok := a.index.FirstStdlibPathForRequire(requirePath); ok {
			return requireResolution{Path: found, Classification: "stdlib-or-unknown"}
		}
	}
	return requireResolution{Path: "", Classification: "stdlib-or-unknown"}
}

func firstExisting(candidates ...string) string {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}
