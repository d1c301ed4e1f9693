package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

const (
	Pass = "pass"
	Fail = "fail"
)

// Status tracks the last pass/fail verdict per sample file name.
type Status map[string]string

// LoadStatus reads the status file at path for the given sample files, which
// should be every known sample and not only those of the current run. Entries
// for other files are pruned and files without an entry start as failing. A missing file is empty; an unreadable or corrupt one is reset
// with a warning.
func LoadStatus(path string, files []string, log *zap.Logger) Status {
	if log == nil {
		log = zap.NewNop()
	}

	st := Status{}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		log.Warn("could not read status file, resetting state", zap.String("path", path), zap.Error(err))
	default:
		if err := json.Unmarshal(raw, &st); err != nil || st == nil {
			log.Warn("status file is not a JSON object, resetting state", zap.String("path", path), zap.Error(err))
			st = Status{}
		}
	}

	valid := make(map[string]bool, len(files))
	for _, f := range files {
		valid[filepath.Base(f)] = true
	}
	for name := range st {
		if !valid[name] {
			delete(st, name)
		}
	}
	for name := range valid {
		if v := st[name]; v != Pass && v != Fail {
			st[name] = Fail
		}
	}
	return st
}

// Record sets the verdict for path.
func (s Status) Record(path string, pass bool) {
	v := Fail
	if pass {
		v = Pass
	}
	s[filepath.Base(path)] = v
}

// Names returns the file names with the given verdict, sorted.
func (s Status) Names(verdict string) []string {
	var res []string
	for name, v := range s {
		if v == verdict {
			res = append(res, name)
		}
	}
	sort.Strings(res)
	return res
}

// Save writes the status file with sorted keys.
func (s Status) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
