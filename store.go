package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	defaultTaskFile = "tasks.txt"
	defaultFileMode = 0644
)

var (
	ErrNoTasks       = errors.New("no tasks")
	ErrOutOfRange    = errors.New("position out of range")
	ErrNoMatch       = errors.New("no matching tasks")
	ErrInvalidChoice = errors.New("invalid choice")
	ErrCancelled     = errors.New("operation cancelled")
)

// PersistError reports a failed read or write of the backing file.
// Mutations that fail to save are still applied in memory.
type PersistError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Chooser picks one task out of several candidates. It returns a 1-based
// position within candidates.
type Chooser func(candidates []string) (int, error)

// Store owns the ordered task list and the file it is persisted to
type Store struct {
	path  string
	tasks []string
	stamp fileStamp
}

// NewStore creates an empty store backed by path
func NewStore(path string) *Store {
	if path == "" {
		path = defaultTaskFile
	}
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Len() int {
	return len(s.tasks)
}

// Tasks returns a copy of the current list
func (s *Store) Tasks() []string {
	return slices.Clone(s.tasks)
}

// Load replaces the in-memory list with the contents of the backing file.
// A missing file leaves the list empty and reports existed=false.
func (s *Store) Load() (existed bool, err error) {
	file, err := os.Open(s.path)

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.tasks = nil
			s.stamp = fileStamp{}
			return false, nil
		}

		return false, &PersistError{Op: "load", Path: s.path, Err: err}
	}

	defer file.Close()

	tasks, err := readTasks(bufio.NewReader(file))

	if err != nil {
		return true, &PersistError{Op: "load", Path: s.path, Err: err}
	}

	s.tasks = tasks
	s.stamp = statStamp(s.path)

	return true, nil
}

// readTasks reads tasks one per line. A lone \r counts as a line break too, so
// files written with old Mac line endings keep every piece.
func readTasks(br *bufio.Reader) ([]string, error) {
	var tasks []string

	for {
		line, err := br.ReadString('\n')

		for _, piece := range strings.Split(line, "\r") {
			if task, nerr := normalizeTask(piece); nerr == nil {
				tasks = append(tasks, task)
			}
		}

		if errors.Is(err, io.EOF) {
			return tasks, nil
		}

		if err != nil {
			return nil, err
		}
	}
}

// Save overwrites the backing file with the current list, one task per line.
// A symlinked path is written through to its target, keeping the target's mode.
func (s *Store) Save() error {
	target, perm := s.saveTarget()
	tempPath := target + ".tmp"

	if err := writeLines(tempPath, s.tasks, perm); err != nil {
		os.Remove(tempPath)
		return &PersistError{Op: "save", Path: s.path, Err: err}
	}

	if err := os.Rename(tempPath, target); err != nil {
		os.Remove(tempPath)
		return &PersistError{Op: "save", Path: s.path, Err: err}
	}

	s.stamp = statStamp(s.path)

	return nil
}

// saveTarget resolves where Save writes and with which permissions
func (s *Store) saveTarget() (string, fs.FileMode) {
	target := s.path
	if resolved, err := filepath.EvalSymlinks(s.path); err == nil {
		target = resolved
	}

	perm := fs.FileMode(defaultFileMode)
	if info, err := os.Stat(target); err == nil {
		perm = info.Mode().Perm()
	}

	return target, perm
}

func writeLines(path string, lines []string, perm fs.FileMode) (err error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)

	if err != nil {
		return err
	}

	if err := file.Chmod(perm); err != nil {
		file.Close()
		return err
	}

	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(file)

	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return err
		}
	}

	return w.Flush()
}

// Changed reports whether the backing file was modified by someone else
// since the last load or save
func (s *Store) Changed() bool {
	return s.stamp.differs(s.path)
}

// Add appends a task to the end of the list and saves
func (s *Store) Add(text string) (string, error) {
	task, err := normalizeTask(text)

	if err != nil {
		return "", err
	}

	s.tasks = append(s.tasks, task)

	return task, s.Save()
}

// RemoveAt removes the task at the 1-based position pos and saves
func (s *Store) RemoveAt(pos int) (string, error) {
	if len(s.tasks) == 0 {
		return "", ErrNoTasks
	}

	if pos < 1 || pos > len(s.tasks) {
		return "", ErrOutOfRange
	}

	return s.removeIndex(pos - 1)
}

func (s *Store) removeIndex(i int) (string, error) {
	removed := s.tasks[i]
	s.tasks = slices.Delete(s.tasks, i, i+1)

	return removed, s.Save()
}

// Matches returns every task containing query, ignoring case
func (s *Store) Matches(query string) []Match {
	return matchTasks(s.tasks, query)
}

// RemoveByName removes the single task matching query. When several tasks
// match, choose must pick one explicitly; nothing is removed otherwise.
func (s *Store) RemoveByName(query string, choose Chooser) (string, error) {
	if len(s.tasks) == 0 {
		return "", ErrNoTasks
	}

	matches := s.Matches(query)

	switch len(matches) {
	case 0:
		return "", ErrNoMatch
	case 1:
		return s.removeIndex(matches[0].Index)
	}

	if choose == nil {
		return "", ErrInvalidChoice
	}

	choice, err := choose(matchTexts(matches))

	if err != nil {
		return "", err
	}

	if choice < 1 || choice > len(matches) {
		return "", ErrInvalidChoice
	}

	return s.removeIndex(matches[choice-1].Index)
}

// CheckInsertPosition validates a 1-based insert position; one past the end is allowed
func (s *Store) CheckInsertPosition(pos int) error {
	if pos < 1 || pos > len(s.tasks)+1 {
		return ErrOutOfRange
	}
	return nil
}

// InsertAt inserts a task at the 1-based position pos and saves.
// On an empty list it behaves exactly like Add.
func (s *Store) InsertAt(pos int, text string) (string, error) {
	if len(s.tasks) == 0 {
		return s.Add(text)
	}

	if err := s.CheckInsertPosition(pos); err != nil {
		return "", err
	}

	task, err := normalizeTask(text)

	if err != nil {
		return "", err
	}

	s.tasks = slices.Insert(s.tasks, pos-1, task)

	return task, s.Save()
}

// ClearAll empties the list and saves, but only for an affirmative confirmation
func (s *Store) ClearAll(confirmation string) (int, error) {
	if len(s.tasks) == 0 {
		return 0, ErrNoTasks
	}

	if !IsAffirmative(confirmation) {
		return 0, ErrCancelled
	}

	n := len(s.tasks)
	s.tasks = nil

	return n, s.Save()
}
