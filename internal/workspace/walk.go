package workspace

import (
	"os"
	"path/filepath"
	"strings"
)

// walkDepthLimited walks root, visiting regular files via visit, descending
// into a directory only while enterDir(relativePathFromRoot) reports true and
// the depth cap has not been exceeded. maxDepth <= 0 means unlimited.
func walkDepthLimited(root string, maxDepth int, enterDir func(rel string) bool, visit func(path string)) {
	if root == "" {
		return
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return
	}
	walkDir(root, root, 0, maxDepth, enterDir, visit)
}

func walkDir(root, dir string, depth, maxDepth int, enterDir func(rel string) bool, visit func(path string)) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if maxDepth > 0 && depth+1 > maxDepth {
				continue
			}
			rel, _ := filepath.Rel(root, path)
			rel = filepath.ToSlash(rel)
			if !enterDir(rel) {
				continue
			}
			walkDir(root, path, depth+1, maxDepth, enterDir, visit)
			continue
		}
		if strings.HasSuffix(e.Name(), ".cr") {
			visit(path)
		}
	}
}
