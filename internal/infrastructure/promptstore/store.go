// Package promptstore loads prompt and fallback-keyword configuration from a
// YAML file and serves immutable snapshots to the pipeline.
package promptstore

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/vcalderon2009/note-taker/internal/domain/prompts"
)

type promptFile struct {
	Prompts map[string]struct {
		System      string  `yaml:"system"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"prompts"`
	Fallback struct {
		TaskKeywords    []string `yaml:"task_keywords"`
		NoteKeywords    []string `yaml:"note_keywords"`
		ListSeparators  []string `yaml:"list_separators"`
		MeetingKeywords []string `yaml:"meeting_keywords"`
	} `yaml:"fallback"`
}

type snapshot struct {
	prompts  map[string]prompts.Prompt
	fallback prompts.Fallback
}

// Store implements prompts.Source. Reads are lock-free against an atomic
// snapshot; Reload swaps the snapshot wholesale so in-flight requests keep a
// consistent view.
type Store struct {
	path    string
	log     zerolog.Logger
	current atomic.Pointer[snapshot]
}

// New loads the prompt file at path. A missing file is not fatal: the
// built-in defaults serve until an operator provides one and reloads.
func New(path string, log zerolog.Logger) (*Store, error) {
	s := &Store{
		path: path,
		log:  log.With().Str("component", "promptstore").Logger(),
	}

	snap, err := s.load()
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Warn().Str("path", path).Msg("prompt file missing, using built-in defaults")
			defaults := defaultSnapshot()
			s.current.Store(&defaults)
			return s, nil
		}
		return nil, err
	}

	s.current.Store(snap)
	return s, nil
}

// Prompt returns the named prompt, falling back to the built-in default when
// the file omits it.
func (s *Store) Prompt(name string) prompts.Prompt {
	snap := s.current.Load()
	if p, ok := snap.prompts[name]; ok {
		return p
	}
	defaults := defaultSnapshot()
	return defaults.prompts[name]
}

// Fallback returns the current fallback keyword configuration.
func (s *Store) Fallback() prompts.Fallback {
	return s.current.Load().fallback
}

// Reload re-reads the prompt file and swaps the snapshot. On any error the
// previous snapshot stays active.
func (s *Store) Reload() error {
	snap, err := s.load()
	if err != nil {
		return fmt.Errorf("reload prompts: %w", err)
	}
	s.current.Store(snap)
	s.log.Info().Str("path", s.path).Int("prompts", len(snap.prompts)).Msg("prompt configuration reloaded")
	return nil
}

func (s *Store) load() (*snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var file promptFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}

	snap := defaultSnapshot()
	for name, p := range file.Prompts {
		if p.System == "" {
			continue
		}
		temp := p.Temperature
		if temp <= 0 {
			temp = snap.prompts[name].Temperature
		}
		snap.prompts[name] = prompts.Prompt{System: p.System, Temperature: temp}
	}
	if len(file.Fallback.TaskKeywords) > 0 {
		snap.fallback.TaskKeywords = file.Fallback.TaskKeywords
	}
	if len(file.Fallback.NoteKeywords) > 0 {
		snap.fallback.NoteKeywords = file.Fallback.NoteKeywords
	}
	if len(file.Fallback.ListSeparators) > 0 {
		snap.fallback.ListSeparators = file.Fallback.ListSeparators
	}
	if len(file.Fallback.MeetingKeywords) > 0 {
		snap.fallback.MeetingKeywords = file.Fallback.MeetingKeywords
	}

	return &snap, nil
}

// Ensure interface compliance.
var _ prompts.Source = (*Store)(nil)
