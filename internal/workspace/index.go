package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/navid-m/liger/internal/config"
)

// ShardManifest is the subset of shard.yml this server cares about: enough
// to classify a lib_cache entry's provenance and to drive main-file
// discovery (component H). Parse failures degrade silently — never a
// correctness dependency (SPEC_FULL.md §3).
type ShardManifest struct {
	Name      string
	Version   *semver.Version
	MainFiles []string
}

type shardYML struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Targets map[string]struct {
		Main string `yaml:"main"`
	} `yaml:"targets"`
}

// ParseShardYML reads and parses a shard.yml file. A missing or malformed
// file is not an error: it simply yields no manifest.
func ParseShardYML(path string) *ShardManifest {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var raw shardYML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil
	}
	m := &ShardManifest{Name: raw.Name}
	if raw.Version != "" {
		if v, err := semver.NewVersion(raw.Version); err == nil {
			m.Version = v
		}
	}
	for _, t := range raw.Targets {
		if t.Main != "" {
			m.MainFiles = append(m.MainFiles, t.Main)
		}
	}
	return m
}

// StdlibLocator discovers candidate Crystal standard library roots, typically
// backed by the compiler oracle's `crystal env CRYSTAL_PATH` (component H).
// Kept as an interface here so workspace never imports the oracle package.
type StdlibLocator interface {
	CrystalPathRoots() ([]string, error)
}

// Index is the process-wide workspace symbol index (component G).
type Index struct {
	root    string
	cfg     config.ServerConfig
	locator StdlibLocator
	log     *zap.Logger

	workspaceCache map[string][]SymbolInfo
	libCache       map[string][]SymbolInfo
	stdlibCache    map[string][]SymbolInfo
	shardManifests map[string]*ShardManifest

	libScanned    bool
	stdlibScanned bool
	lastScan      time.Time

	libInvalidated atomic.Bool
	watcher        *fsnotifyWatcher
}

// NewIndex constructs an empty Index rooted at root.
func NewIndex(root string, cfg config.ServerConfig, locator StdlibLocator, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	idx := &Index{
		root:           root,
		cfg:            cfg,
		locator:        locator,
		log:            log,
		workspaceCache: make(map[string][]SymbolInfo),
		libCache:       make(map[string][]SymbolInfo),
		stdlibCache:    make(map[string][]SymbolInfo),
		shardManifests: make(map[string]*ShardManifest),
	}
	idx.watcher = startLibWatcher(root, &idx.libInvalidated, log)
	return idx
}

// Close stops any background watchers. Safe to call on a nil watcher.
func (idx *Index) Close() {
	if idx.watcher != nil {
		idx.watcher.Stop()
	}
}

// UpdateSource re-extracts a single file's symbols immediately and forces the
// next ScanIfNeeded to perform a fresh walk (spec.md §4.G).
func (idx *Index) UpdateSource(uri, path, text string) {
	idx.lastScan = time.Time{}
	if !strings.HasSuffix(path, ".cr") {
		return
	}
	ex := Extract(path, text)
	idx.workspaceCache[path] = ex.Flat
}

// ScanIfNeeded performs a full project (re)scan unless the last completed
// scan is within the configured debounce window.
func (idx *Index) ScanIfNeeded() {
	if !idx.lastScan.IsZero() && time.Since(idx.lastScan) < idx.cfg.ScanDebounce() {
		return
	}
	idx.ForceScan()
}

// ForceScan walks the project tree (always) and the lib tree (once, or again
// if fsnotify observed a shard add/remove since the last lib scan).
func (idx *Index) ForceScan() {
	idx.scanProject()
	if idx.libInvalidated.Swap(false) {
		idx.libScanned = false
	}
	if !idx.libScanned {
		idx.scanLib()
		idx.libScanned = true
	}
	idx.lastScan = time.Now()
}

func (idx *Index) scanProject() {
	if idx.root == "" {
		return
	}
	walkDepthLimited(idx.root, idx.cfg.MaxProjectDepth, func(rel string) bool {
		base := filepath.Base(rel)
		if strings.HasPrefix(base, ".") {
			return false
		}
		if base == "bin" || base == "lib" {
			return false
		}
		return true
	}, func(path string) {
		if !strings.HasSuffix(path, ".cr") {
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			idx.log.Warn("skip unreadable file during project scan", zap.String("path", path), zap.Error(err))
			return
		}
		idx.workspaceCache[path] = Extract(path, string(data)).Flat
	})
}

func (idx *Index) scanLib() {
	libRoot := filepath.Join(idx.root, "lib")
	entries, err := os.ReadDir(libRoot)
	if err != nil {
		return
	}
	for _, shard := range entries {
		if !shard.IsDir() {
			continue
		}
		shardDir := filepath.Join(libRoot, shard.Name())
		if m := ParseShardYML(filepath.Join(shardDir, "shard.yml")); m != nil {
			idx.shardManifests[shardDir] = m
		}
		srcRoot := filepath.Join(shardDir, "src")
		walkDepthLimited(srcRoot, idx.cfg.MaxLibDepth, func(rel string) bool {
			return !strings.HasPrefix(filepath.Base(rel), ".")
		}, func(path string) {
			if !strings.HasSuffix(path, ".cr") {
				return
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return
			}
			idx.libCache[path] = Extract(path, string(data)).Flat
		})
	}
}

var stdlibDenyDirs = map[string]bool{
	"compiler_rt": true, "ext": true, "llvm": true,
}

func (idx *Index) scanStdlib() {
	idx.stdlibScanned = true
	var roots []string
	if idx.cfg.CrystalPath != "" {
		roots = append(roots, strings.Split(idx.cfg.CrystalPath, string(os.PathListSeparator))...)
	}
	if idx.locator != nil {
		if found, err := idx.locator.CrystalPathRoots(); err == nil {
			roots = append(roots, found...)
		}
	}
	roots = append(roots,
		"/usr/share/crystal/src",
		"/usr/local/share/crystal/src",
		"/opt/crystal/src",
	)
	seen := map[string]bool{}
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" || seen[root] {
			continue
		}
		seen[root] = true
		if !looksLikeStdlibRoot(root) {
			continue
		}
		walkDepthLimited(root, idx.cfg.MaxStdlibDepth, func(rel string) bool {
			return !stdlibDenyDirs[filepath.Base(rel)] && !strings.HasPrefix(filepath.Base(rel), ".")
		}, func(path string) {
			if !strings.HasSuffix(path, ".cr") {
				return
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return
			}
			idx.stdlibCache[path] = Extract(path, string(data)).Flat
		})
		break // first usable root is enough; stdlib is not shard-partitioned.
	}
}

func looksLikeStdlibRoot(root string) bool {
	for _, marker := range []string{"prelude.cr", "object.cr"} {
		if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
			return true
		}
	}
	return false
}

// FindSymbolInfo searches workspace, then lib, then (lazily, on miss) stdlib
// caches for an exact name match.
func (idx *Index) FindSymbolInfo(name string) []SymbolInfo {
	idx.ScanIfNeeded()
	if found := searchCache(idx.workspaceCache, name); len(found) > 0 {
		return found
	}
	if found := searchCache(idx.libCache, name); len(found) > 0 {
		return found
	}
	if !idx.stdlibScanned {
		idx.scanStdlib()
	}
	return searchCache(idx.stdlibCache, name)
}

func searchCache(cache map[string][]SymbolInfo, name string) []SymbolInfo {
	var out []SymbolInfo
	for _, syms := range cache {
		for _, s := range syms {
			if s.Name == name {
				out = append(out, s)
			}
		}
	}
	return out
}

// FindPropertyDefinition looks up a property/getter/setter/instance-variable
// symbol by its '@'-prefixed name.
func (idx *Index) FindPropertyDefinition(ivarName string) []SymbolInfo {
	if !strings.HasPrefix(ivarName, "@") {
		ivarName = "@" + ivarName
	}
	return idx.FindSymbolInfo(ivarName)
}

// FindMethodDefinition finds a method named `method` whose Type (owner
// class/return-context, per the curated per-type scan in spec.md §4.G) best
// matches receiverType.
func (idx *Index) FindMethodDefinition(receiverType, method string) (SymbolInfo, bool) {
	idx.ScanIfNeeded()
	candidates := idx.FindSymbolInfo(method)
	for _, c := range candidates {
		if c.Kind != KindMethod {
			continue
		}
		if receiverType == "" || c.Type == receiverType {
			return c, true
		}
	}
	if len(candidates) > 0 {
		for _, c := range candidates {
			if c.Kind == KindMethod {
				return c, true
			}
		}
	}
	return SymbolInfo{}, false
}

// GetClassMembers returns the nested members (methods, properties, ivars)
// whose fully-qualified name is prefixed by className::, each under its
// short (unqualified) name.
func (idx *Index) GetClassMembers(className string) []SymbolInfo {
	return idx.membersOfNamespace(className)
}

// GetStructMembers is the struct counterpart of GetClassMembers.
func (idx *Index) GetStructMembers(structName string) []SymbolInfo {
	return idx.membersOfNamespace(structName)
}

func (idx *Index) membersOfNamespace(ns string) []SymbolInfo {
	idx.ScanIfNeeded()
	prefix := ns + "::"
	var out []SymbolInfo
	for _, cache := range []map[string][]SymbolInfo{idx.workspaceCache, idx.libCache, idx.stdlibCache} {
		for _, syms := range cache {
			for _, s := range syms {
				if strings.HasPrefix(s.Name, prefix) && !strings.Contains(strings.TrimPrefix(s.Name, prefix), "::") {
					s.Name = strings.TrimPrefix(s.Name, prefix)
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// GetEnumValues returns the SymbolInfo for each member of the given enum,
// scanning the enum body from its declaration line down to its closing end.
func (idx *Index) GetEnumValues(enumName string) []SymbolInfo {
	idx.ScanIfNeeded()
	owner, ok := idx.firstByNameAndKind(enumName, KindEnum)
	if !ok {
		return nil
	}
	data, err := os.ReadFile(owner.File)
	if err != nil {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	indent := indentOf(lines[owner.Line])
	var out []SymbolInfo
	for i := owner.Line + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if indentOf(lines[i]) <= indent && endRe.MatchString(lines[i]) {
			break
		}
		if m := enumMemberRe.FindStringSubmatch(trimmed); m != nil {
			out = append(out, SymbolInfo{Name: m[1], Type: enumName, Kind: KindEnumMember, File: owner.File, Line: i})
		}
	}
	return out
}

func (idx *Index) firstByNameAndKind(name string, kind Kind) (SymbolInfo, bool) {
	for _, s := range idx.FindSymbolInfo(name) {
		if s.Kind == kind {
			return s, true
		}
	}
	return SymbolInfo{}, false
}

// FindMember scans the file of a parent declaration for a member (enum
// value, nested class/module/struct, or constant) named `name`, starting
// just after parentLine and stopping at the parent's own closing line
// (spec.md §4.G).
func (idx *Index) FindMember(file string, parentLine int, name string) (SymbolInfo, bool) {
	data, err := os.ReadFile(file)
	if err != nil {
		return SymbolInfo{}, false
	}
	lines := strings.Split(string(data), "\n")
	if parentLine < 0 || parentLine >= len(lines) {
		return SymbolInfo{}, false
	}
	indent := indentOf(lines[parentLine])
	for i := parentLine + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		lineIndent := indentOf(lines[i])
		if lineIndent <= indent &&
			(endRe.MatchString(lines[i]) ||
				strings.HasPrefix(trimmed, "class ") ||
				strings.HasPrefix(trimmed, "module ") ||
				strings.HasPrefix(trimmed, "struct ") ||
				strings.HasPrefix(trimmed, "enum ")) {
			break
		}
		if m := enumMemberRe.FindStringSubmatch(trimmed); m != nil && m[1] == name {
			return SymbolInfo{Name: name, Kind: KindEnumMember, File: file, Line: i}, true
		}
		if m := classRe.FindStringSubmatch(lines[i]); m != nil && m[2] == name {
			return SymbolInfo{Name: name, Kind: KindClass, File: file, Line: i}, true
		}
		if m := moduleRe.FindStringSubmatch(lines[i]); m != nil && m[2] == name {
			return SymbolInfo{Name: name, Kind: KindModule, File: file, Line: i}, true
		}
		if m := structRe.FindStringSubmatch(lines[i]); m != nil && m[2] == name {
			return SymbolInfo{Name: name, Kind: KindStruct, File: file, Line: i}, true
		}
		if m := constRe.FindStringSubmatch(lines[i]); m != nil && m[2] == name {
			return SymbolInfo{Name: name, Kind: KindConstant, File: file, Line: i, Type: inferType(m[3])}, true
		}
	}
	return SymbolInfo{}, false
}

// GetTypeAtPosition returns the non-empty Type of the first indexed symbol
// named `name`, whatever its kind.
func (idx *Index) GetTypeAtPosition(name string) (string, bool) {
	for _, s := range idx.FindSymbolInfo(name) {
		if s.Type != "" {
			return s.Type, true
		}
	}
	return "", false
}

// AllSymbols returns every symbol currently cached, across all three tiers.
// Used by workspace/symbol fuzzy search.
func (idx *Index) AllSymbols() []SymbolInfo {
	idx.ScanIfNeeded()
	var out []SymbolInfo
	for _, cache := range []map[string][]SymbolInfo{idx.workspaceCache, idx.libCache, idx.stdlibCache} {
		for _, syms := range cache {
			out = append(out, syms...)
		}
	}
	return out
}

// FirstStdlibPathForRequire resolves a bare `require "name"` against the
// stdlib cache: first an exact "name.cr" suffix match, then the directory
// form "name/name.cr". Triggers a lazy stdlib scan on first use.
func (idx *Index) FirstStdlibPathForRequire(name string) (string, bool) {
	if !idx.stdlibScanned {
		idx.scanStdlib()
	}
	direct := name + ".cr"
	dirForm := filepath.Join(name, name+".cr")
	for path := range idx.stdlibCache {
		if strings.HasSuffix(path, string(os.PathSeparator)+direct) || filepath.Base(path) == direct {
			if strings.Contains(path, name) {
				return path, true
			}
		}
	}
	for path := range idx.stdlibCache {
		if strings.HasSuffix(filepath.ToSlash(path), filepath.ToSlash(dirForm)) {
			return path, true
		}
	}
	return "", false
}

// ShardFor returns the ShardManifest owning the given absolute file path, if
// the path sits under a scanned shard's src/ tree.
func (idx *Index) ShardFor(path string) (*ShardManifest, bool) {
	for dir, m := range idx.shardManifests {
		if strings.HasPrefix(path, dir+string(os.PathSeparator)) {
			return m, true
		}
	}
	return nil, false
}
