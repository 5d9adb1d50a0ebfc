package twig

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/aweris/twig/internal/digest"
)

const (
	// DefaultBranch is the branch created by Init.
	DefaultBranch = "master"

	initialMessage = "initial commit"
)

// Commit is an immutable node of the commit graph. Parents and children
// are hashes resolved through State.Commits.
type Commit struct {
	Hash     string            `json:"hash"`
	Message  string            `json:"message"`
	Time     time.Time         `json:"time"`
	Manifest map[string]string `json:"manifest"`
	Parents  []string          `json:"parents,omitempty"`
	Children []string          `json:"children,omitempty"`
}

// IsMerge reports whether c has two parents.
func (c *Commit) IsMerge() bool { return len(c.Parents) > 1 }

// Short returns the 7-character abbreviation of the hash.
func (c *Commit) Short() string { return c.Hash[:7] }

// State is the whole persisted snapshot of a repository.
type State struct {
	Commits  map[string]*Commit `json:"commits"`
	Branches map[string]string  `json:"branches"`
	Current  string             `json:"current"`

	// Staged maps a file name to its pending blob. An empty value marks a
	// file whose pending removal was cancelled.
	Staged    map[string]string `json:"staged"`
	Removed   map[string]bool   `json:"removed"`
	Remotes   map[string]string `json:"remotes"`
	Conflicts map[string]bool   `json:"conflicts"`
}

// NewState returns the state of a freshly initialized repository: the
// initial commit on the default branch.
func NewState() *State {
	s := &State{
		Commits:   make(map[string]*Commit),
		Branches:  make(map[string]string),
		Current:   DefaultBranch,
		Staged:    make(map[string]string),
		Removed:   make(map[string]bool),
		Remotes:   make(map[string]string),
		Conflicts: make(map[string]bool),
	}
	root := newCommit(initialMessage, time.Unix(0, 0).UTC(), map[string]string{})
	s.register(root)
	s.Branches[DefaultBranch] = root.Hash
	return s
}

// DecodeState parses an encoded snapshot.
func DecodeState(data []byte) (*State, error) {
	s := &State{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	s.fill()
	if _, ok := s.Branches[s.Current]; !ok {
		return nil, fmt.Errorf("decode state: current branch %q has no head", s.Current)
	}
	for name, h := range s.Branches {
		if _, ok := s.Commits[h]; !ok {
			return nil, fmt.Errorf("decode state: branch %q points at unknown commit %s", name, h)
		}
	}
	return s, nil
}

// Encode serializes the snapshot.
func (s *State) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

func (s *State) fill() {
	if s.Commits == nil {
		s.Commits = make(map[string]*Commit)
	}
	if s.Branches == nil {
		s.Branches = make(map[string]string)
	}
	if s.Staged == nil {
		s.Staged = make(map[string]string)
	}
	if s.Removed == nil {
		s.Removed = make(map[string]bool)
	}
	if s.Remotes == nil {
		s.Remotes = make(map[string]string)
	}
	if s.Conflicts == nil {
		s.Conflicts = make(map[string]bool)
	}
	for _, c := range s.Commits {
		if c.Manifest == nil {
			c.Manifest = make(map[string]string)
		}
	}
}

func (s *State) head() *Commit {
	return s.Commits[s.Branches[s.Current]]
}

func (s *State) clearStaging() {
	clear(s.Staged)
	clear(s.Removed)
}

// register adds c to the graph and records it as a child of its parents.
// A node with the same hash is the same node, so re-registering is a no-op
// apart from the back-references.
func (s *State) register(c *Commit) *Commit {
	if existing, ok := s.Commits[c.Hash]; ok {
		c = existing
	} else {
		s.Commits[c.Hash] = c
	}
	for _, p := range c.Parents {
		if parent, ok := s.Commits[p]; ok && !contains(parent.Children, c.Hash) {
			parent.Children = append(parent.Children, c.Hash)
		}
	}
	return c
}

// union copies every commit of other that s lacks and merges back-references.
func (s *State) union(other *State) {
	hashes := make([]string, 0, len(other.Commits))
	for h := range other.Commits {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)
	for _, h := range hashes {
		if _, ok := s.Commits[h]; !ok {
			s.Commits[h] = cloneCommit(other.Commits[h])
		}
	}
	for _, h := range hashes {
		c := s.Commits[h]
		for _, child := range other.Commits[h].Children {
			if !contains(c.Children, child) {
				c.Children = append(c.Children, child)
			}
		}
	}
}

func newCommit(message string, t time.Time, manifest map[string]string, parents ...string) *Commit {
	return &Commit{
		Hash:     commitHash(message, manifest, t),
		Message:  message,
		Time:     t,
		Manifest: manifest,
		Parents:  parents,
	}
}

// commitHash is the identity of a commit: message, sorted manifest entries
// and UTC commit time, each field terminated by a NUL byte.
func commitHash(message string, manifest map[string]string, t time.Time) string {
	names := make([]string, 0, len(manifest))
	for name := range manifest {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(message)
	b.WriteByte(0)
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(0)
		b.WriteString(manifest[name])
		b.WriteByte(0)
	}
	b.WriteString(t.UTC().Format(time.RFC3339Nano))
	return digest.MustSum([]byte(b.String()))
}

func cloneCommit(c *Commit) *Commit {
	cp := *c
	cp.Manifest = cloneManifest(c.Manifest)
	cp.Parents = append([]string(nil), c.Parents...)
	cp.Children = append([]string(nil), c.Children...)
	return &cp
}

func cloneManifest(m map[string]string) map[string]string {
	cp := make(map[string]string, len(m))
	maps.Copy(cp, m)
	return cp
}

func contains(list []string, s string) bool {
	return slices.Contains(list, s)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func sortStrings(s []string) []string {
	slices.Sort(s)
	return s
}
