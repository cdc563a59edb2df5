// Package cache provides a content-addressed cache of lint results, keyed by
// file content, configuration, and the set of enabled rules, so unchanged
// files can skip re-linting entirely.
//
// Cache key: (file_hash, config_hash, rules_hash)
// Cache value: []lint.Diagnostic
// Storage: {cache_dir}/{version}/{file_hash}_{rules_hash[:16]}.json
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/inkloom/inkloom/pkg/fsutil"
	"github.com/inkloom/inkloom/pkg/lint"
)

// memCacheSize bounds the in-memory LRU layer in front of the disk store.
const memCacheSize = 1024

// entry is the on-disk representation of one cached lint result.
type entry struct {
	FileHash    string           `json:"file_hash"`
	ConfigHash  string           `json:"config_hash"`
	RulesHash   string           `json:"rules_hash"`
	Version     string           `json:"version"`
	Diagnostics []lint.Diagnostic `json:"diagnostics"`
	Timestamp   int64            `json:"timestamp"`
}

// Stats tracks cache hit/miss/write counters for summary reporting.
type Stats struct {
	Hits   int
	Misses int
	Writes int
}

// HitRate returns the hit percentage, or 0 when no lookups have occurred.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Store is a two-layer (in-memory + disk) content-addressed cache.
type Store struct {
	dir     string
	version string
	enabled bool

	mu    sync.Mutex
	stats Stats
	mem   *lru.Cache[string, entry]
}

// New creates a Store rooted at dir for the given version string (typically
// the build version so an upgrade invalidates stale entries). When enabled
// is false, Get always misses and Set is a no-op.
func New(dir, version string, enabled bool) *Store {
	mem, _ := lru.New[string, entry](memCacheSize)
	return &Store{
		dir:     dir,
		version: version,
		enabled: enabled,
		mem:     mem,
	}
}

// HashContent returns the content-addressing hash of file content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashConfig returns a stable hash of a configuration value by hashing its
// canonical JSON encoding. The caller is responsible for passing a value
// whose JSON encoding is deterministic (map keys sort automatically via
// encoding/json, so config.Config's map fields are safe).
func HashConfig(cfg any) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashRules returns a deterministic hash of the set of enabled rule IDs,
// ensuring different rule configurations land in different cache entries.
func HashRules(ruleIDs []string) string {
	sorted := append([]string(nil), ruleIDs...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(sum[:])
}

// Key identifies one cache slot.
type Key struct {
	FileHash   string
	ConfigHash string
	RulesHash  string
}

func (s *Store) path(k Key) string {
	short := k.RulesHash
	if len(short) > 16 {
		short = short[:16]
	}
	return filepath.Join(s.dir, s.version, fmt.Sprintf("%s_%s.json", k.FileHash, short))
}

func (s *Store) memKey(k Key) string {
	return k.FileHash + "|" + k.ConfigHash + "|" + k.RulesHash
}

// Get returns cached diagnostics for content under the given config/rules
// hashes, or (nil, false) on a miss. A miss is also returned, and nothing is
// read from disk, if the cache is disabled.
func (s *Store) Get(content []byte, configHash, rulesHash string) ([]lint.Diagnostic, bool) {
	if !s.enabled {
		return nil, false
	}

	k := Key{FileHash: HashContent(content), ConfigHash: configHash, RulesHash: rulesHash}

	if e, ok := s.mem.Get(s.memKey(k)); ok {
		if e.ConfigHash == configHash && e.RulesHash == rulesHash && e.Version == s.version {
			s.recordHit()
			return e.Diagnostics, true
		}
	}

	data, err := os.ReadFile(s.path(k))
	if err != nil {
		s.recordMiss()
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		s.recordMiss()
		return nil, false
	}

	if e.FileHash != k.FileHash || e.ConfigHash != configHash || e.RulesHash != rulesHash || e.Version != s.version {
		s.recordMiss()
		return nil, false
	}

	s.mem.Add(s.memKey(k), e)
	s.recordHit()
	return e.Diagnostics, true
}

// Set stores diagnostics for content under the given config/rules hashes.
// Disk writes are best-effort: a write failure is silently dropped since the
// cache is an optimization, never a correctness requirement.
func (s *Store) Set(content []byte, configHash, rulesHash string, diagnostics []lint.Diagnostic) {
	if !s.enabled {
		return
	}

	k := Key{FileHash: HashContent(content), ConfigHash: configHash, RulesHash: rulesHash}
	e := entry{
		FileHash:    k.FileHash,
		ConfigHash:  configHash,
		RulesHash:   rulesHash,
		Version:     s.version,
		Diagnostics: diagnostics,
		Timestamp:   0,
	}

	s.mem.Add(s.memKey(k), e)

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return
	}

	p := s.path(k)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return
	}
	if err := fsutil.WriteAtomic(noCancelCtx{}, p, data, 0o644); err != nil {
		return
	}

	s.mu.Lock()
	s.stats.Writes++
	s.mu.Unlock()
}

// Clear removes the entire cache directory.
func (s *Store) Clear() error {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return nil
	}
	return os.RemoveAll(s.dir)
}

// Init creates the version directory, prunes stale version directories left
// behind by earlier builds, and writes the CACHEDIR.TAG and .gitignore
// markers so the cache directory is recognized as disposable and never
// accidentally committed.
func (s *Store) Init() error {
	if !s.enabled {
		return nil
	}

	versionDir := filepath.Join(s.dir, s.version)
	if err := os.MkdirAll(versionDir, 0o755); err != nil {
		return fmt.Errorf("create cache version directory: %w", err)
	}

	s.pruneOldVersions()

	gitignorePath := filepath.Join(s.dir, ".gitignore")
	if _, err := os.Stat(gitignorePath); os.IsNotExist(err) {
		_ = os.WriteFile(gitignorePath, []byte("# Automatically created by inkloom.\n*\n"), 0o644)
	}

	tagPath := filepath.Join(s.dir, "CACHEDIR.TAG")
	if _, err := os.Stat(tagPath); os.IsNotExist(err) {
		tag := "Signature: 8a477f597d28d172789f06886806bc55\n" +
			"# This file is a cache directory tag created by inkloom.\n"
		_ = os.WriteFile(tagPath, []byte(tag), 0o644)
	}

	return nil
}

// pruneOldVersions removes cache subdirectories left by other inkloom
// versions, identified by a directory name starting with an ASCII digit.
func (s *Store) pruneOldVersions() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	for _, de := range entries {
		if !de.IsDir() || de.Name() == s.version {
			continue
		}
		if len(de.Name()) == 0 {
			continue
		}
		if _, err := strconv.Atoi(de.Name()[:1]); err != nil {
			continue
		}
		_ = os.RemoveAll(filepath.Join(s.dir, de.Name()))
	}
}

// Stats returns a snapshot of the cache's hit/miss/write counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Store) recordHit() {
	s.mu.Lock()
	s.stats.Hits++
	s.mu.Unlock()
}

func (s *Store) recordMiss() {
	s.mu.Lock()
	s.stats.Misses++
	s.mu.Unlock()
}

// DefaultDir returns the default cache directory for the current working
// tree, ".inkloom_cache", mirroring the project-local convention used by the
// original implementation's ".rumdl_cache".
func DefaultDir(baseDir string) string {
	return filepath.Join(baseDir, ".inkloom_cache")
}

// noCancelCtx satisfies the context.Context subset fsutil.WriteAtomic needs
// without pulling a real context through every cache write call site; the
// cache never needs to cancel a single small JSON write mid-flight.
type noCancelCtx struct{}

func (noCancelCtx) Deadline() (time.Time, bool) { return time.Time{}, false }
func (noCancelCtx) Done() <-chan struct{}       { return nil }
func (noCancelCtx) Err() error                  { return nil }
func (noCancelCtx) Value(any) any               { return nil }
