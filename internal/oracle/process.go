package oracle

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/navid-m/liger/internal/config"
	"github.com/navid-m/liger/internal/workspace"
)

// ProcessOracle forks the `crystal` binary via os/exec. Binary resolution
// follows TimAnthonyAlexander-loom's rgPath()/findModuleRoot() shape
// (exec.LookPath first, cached once) generalized to a single always-on-PATH
// tool instead of an embeddable bundled binary.
type ProcessOracle struct {
	cfg config.ServerConfig
	log *zap.Logger

	binPath     string
	binResolved bool

	mu           sync.Mutex
	mainFileRoot string
	mainFile     string
	mainFileAt   time.Time

	hashMu     sync.Mutex
	lastHashes map[string]string
}

// NewProcessOracle resolves the configured oracle binary once and returns a
// ready-to-use ProcessOracle. Resolution failure is not an error: Available()
// simply reports false and every call degrades to "no answer".
func NewProcessOracle(cfg config.ServerConfig, log *zap.Logger) *ProcessOracle {
	if log == nil {
		log = zap.NewNop()
	}
	o := &ProcessOracle{cfg: cfg, log: log, lastHashes: make(map[string]string)}
	if !cfg.OracleEnabled {
		return o
	}
	if p, err := exec.LookPath(cfg.OracleBinary); err == nil {
		o.binPath = p
		o.binResolved = true
	} else {
		log.Warn("compiler oracle binary not found on PATH", zap.String("binary", cfg.OracleBinary), zap.Error(err))
	}
	return o
}

// Available reports whether the oracle binary was found on PATH.
func (o *ProcessOracle) Available() bool {
	return o.cfg.OracleEnabled && o.binResolved
}

// mainFileFor discovers the compilation entry-point for root, caching the
// result for 5 seconds (spec.md §4.H).
func (o *ProcessOracle) mainFileFor(root string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.mainFileRoot == root && time.Since(o.mainFileAt) < 5*time.Second {
		return o.mainFile
	}
	o.mainFileRoot = root
	o.mainFileAt = time.Now()
	o.mainFile = discoverMainFile(root)
	return o.mainFile
}

func discoverMainFile(root string) string {
	if manifest := workspace.ParseShardYML(filepath.Join(root, "shard.yml")); manifest != nil {
		for _, m := range manifest.MainFiles {
			p := filepath.Join(root, m)
			if fileExists(p) {
				return p
			}
		}
	}
	candidates := []string{
		filepath.Join(root, "src", filepath.Base(root)+".cr"),
		filepath.Join(root, "src", "main.cr"),
		filepath.Join(root, "main.cr"),
	}
	for _, c := range candidates {
		if fileExists(c) {
			return c
		}
	}
	return ""
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// writeIfChanged writes text to path iff its content hash differs from the
// last write the oracle performed for this path (spec.md §4.H). This is the
// "write before oracle call" gate: the known residual race (editor saves
// between hash-check and write) is accepted per DESIGN.md's open-question
// decision, not papered over.
func (o *ProcessOracle) writeIfChanged(path, text string) error {
	sum := fmt.Sprintf("%x", sha256.Sum256([]byte(text)))
	o.hashMu.Lock()
	last, ok := o.lastHashes[path]
	o.hashMu.Unlock()
	if ok && last == sum {
		return nil
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return err
	}
	o.hashMu.Lock()
	o.lastHashes[path] = sum
	o.hashMu.Unlock()
	return nil
}

// SyncDocument writes the in-memory text for file to disk iff changed,
// ahead of an oracle invocation. Called by the analyzer immediately before
// Implementations/Context.
func (o *ProcessOracle) SyncDocument(path, text string) error {
	return o.writeIfChanged(path, text)
}

var locationRe = regexp.MustCompile(`^(.+):(\d+):(\d+)$`)

// Implementations runs `crystal tool implementations -c file:line:col [main]`.
func (o *ProcessOracle) Implementations(ctx context.Context, file string, line, col int, mainFile string) []Location {
	if !o.Available() {
		return nil
	}
	cursor := fmt.Sprintf("%s:%d:%d", file, line+1, col+1)
	args := []string{"tool", "implementations", "-c", cursor}
	if mainFile != "" {
		args = append(args, mainFile)
	} else {
		args = append(args, file)
	}
	out, ok := o.run(ctx, args)
	if !ok {
		return nil
	}
	var locs []Location
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		m := locationRe.FindStringSubmatch(strings.TrimSpace(sc.Text()))
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		locs = append(locs, Location{File: m[1], Line: line - 1, Column: col - 1})
	}
	return locs
}

// Context runs `crystal tool context -c file:line:col [main]` and returns the
// raw stdout, or "" if the output looks like an error/usage message.
func (o *ProcessOracle) Context(ctx context.Context, file string, line, col int, mainFile string) string {
	if !o.Available() {
		return ""
	}
	cursor := fmt.Sprintf("%s:%d:%d", file, line+1, col+1)
	args := []string{"tool", "context", "-c", cursor}
	if mainFile != "" {
		args = append(args, mainFile)
	} else {
		args = append(args, file)
	}
	out, ok := o.run(ctx, args)
	if !ok {
		return ""
	}
	text := strings.TrimSpace(string(out))
	if text == "" || strings.Contains(text, "Error") || strings.Contains(text, "Usage:") || strings.Contains(text, "no context") {
		return ""
	}
	return text
}

// CrystalPathRoots runs `crystal env CRYSTAL_PATH` and splits the result into
// candidate stdlib roots.
func (o *ProcessOracle) CrystalPathRoots() ([]string, error) {
	if !o.Available() {
		return nil, fmt.Errorf("oracle binary unavailable")
	}
	out, ok := o.run(context.Background(), []string{"env", "CRYSTAL_PATH"})
	if !ok {
		return nil, fmt.Errorf("crystal env CRYSTAL_PATH failed")
	}
	raw := strings.TrimSpace(string(out))
	raw = strings.Trim(raw, `"`)
	parts := strings.Split(raw, string(os.PathListSeparator))
	var roots []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		roots = append(roots, p)
	}
	return roots, nil
}

func (o *ProcessOracle) run(ctx context.Context, args []string) ([]byte, bool) {
	ctx, cancel := withOracleTimeout(ctx, o.cfg)
	defer cancel()

	id := uuid.NewString()
	cmd := exec.CommandContext(ctx, o.binPath, args...)
	out, err := cmd.Output()
	if err != nil {
		o.log.Debug("oracle invocation degraded to no-answer",
			zap.String("correlation_id", id),
			zap.Strings("args", args),
			zap.Error(err),
		)
		return nil, false
	}
	o.log.Debug("oracle invocation succeeded",
		zap.String("correlation_id", id),
		zap.Strings("args", args),
	)
	return out, true
}
