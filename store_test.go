package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var storeCounter atomic.Int64

func newTestStore(t *testing.T, content string) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tasks.txt")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	store := NewStore(path)
	_, err := store.Load()
	require.NoError(t, err)
	return store
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewStoreDefaultPath(t *testing.T) {
	assert.Equal(t, "tasks.txt", NewStore("").Path())
	assert.Equal(t, "/tmp/x.txt", NewStore("/tmp/x.txt").Path())
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.txt"))

	existed, err := store.Load()
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, 0, store.Len())
}

func TestLoadTrimsAndDropsBlankLines(t *testing.T) {
	store := newTestStore(t, "buy milk  \n\n   \n\twalk dog\r\nlast line without newline")

	assert.Equal(t, []string{"buy milk", "walk dog", "last line without newline"}, store.Tasks())
}

func TestLoadSplitsLoneCarriageReturn(t *testing.T) {
	store := newTestStore(t, "keep\nold\rmac\n\r\rtrailing\r")

	assert.Equal(t, []string{"keep", "old", "mac", "trailing"}, store.Tasks())

	_, err := store.Add("new")
	require.NoError(t, err)
	assert.Equal(t, "keep\nold\nmac\ntrailing\nnew\n", readFile(t, store.Path()))
}

func TestLoadLongLine(t *testing.T) {
	long := strings.Repeat("x", 2*1024*1024)
	store := newTestStore(t, "short\n"+long+"\nafter\n")

	require.Equal(t, 3, store.Len())
	assert.Equal(t, long, store.Tasks()[1])
	assert.Equal(t, "after", store.Tasks()[2])
}

func TestLoadUnreadableFileFails(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	existed, err := store.Load()
	require.Error(t, err)

	var persistErr *PersistError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, "load", persistErr.Op)
	assert.True(t, existed)
}

func TestSaveWritesOneTaskPerLine(t *testing.T) {
	store := newTestStore(t, "")
	store.tasks = []string{"a", "b", "c"}

	require.NoError(t, store.Save())
	assert.Equal(t, "a\nb\nc\n", readFile(t, store.Path()))

	_, err := os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be gone after save")
}

func TestSaveEmptyListTruncates(t *testing.T) {
	store := newTestStore(t, "a\nb\n")
	store.tasks = nil

	require.NoError(t, store.Save())
	assert.Equal(t, "", readFile(t, store.Path()))
}

func TestSaveThroughSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "real.txt")
	link := filepath.Join(dir, "tasks.txt")
	require.NoError(t, os.WriteFile(target, []byte("a\n"), 0600))
	require.NoError(t, os.Symlink(target, link))

	store := NewStore(link)
	_, err := store.Load()
	require.NoError(t, err)

	_, err = store.Add("b")
	require.NoError(t, err)

	assert.Equal(t, "a\nb\n", readFile(t, target))

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "link should survive the save")

	info, err = os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	assert.False(t, store.Changed())
}

func TestSaveKeepsFileMode(t *testing.T) {
	store := newTestStore(t, "a\n")
	require.NoError(t, os.Chmod(store.Path(), 0640))

	_, err := store.Add("b")
	require.NoError(t, err)

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "tasks.txt")
	store := NewStore(path)

	task, err := store.Add("buy milk")

	var persistErr *PersistError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, "save", persistErr.Op)
	assert.Equal(t, "buy milk", task)
	assert.Equal(t, []string{"buy milk"}, store.Tasks())
}

func TestAdd(t *testing.T) {
	store := newTestStore(t, "")

	task, err := store.Add("  buy milk  ")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task)
	assert.Equal(t, "buy milk\n", readFile(t, store.Path()))

	_, err = store.Add("   ")
	assert.ErrorIs(t, err, ErrEmptyTask)

	_, err = store.Add("two\nlines")
	assert.ErrorIs(t, err, ErrMultilineTask)

	_, err = store.Add("carriage\rreturn")
	assert.ErrorIs(t, err, ErrMultilineTask)

	assert.Equal(t, []string{"buy milk"}, store.Tasks())
}

func TestAddAllowsDuplicates(t *testing.T) {
	store := newTestStore(t, "")

	store.Add("same")
	store.Add("same")

	assert.Equal(t, []string{"same", "same"}, store.Tasks())
}

func TestTasksReturnsCopy(t *testing.T) {
	store := newTestStore(t, "a\nb\n")

	tasks := store.Tasks()
	tasks[0] = "changed"

	assert.Equal(t, []string{"a", "b"}, store.Tasks())
}

func TestRemoveAt(t *testing.T) {
	store := newTestStore(t, "a\nb\nc\n")

	for _, pos := range []int{0, -1, 4, 100} {
		_, err := store.RemoveAt(pos)
		assert.ErrorIs(t, err, ErrOutOfRange, "pos %d", pos)
	}
	assert.Equal(t, []string{"a", "b", "c"}, store.Tasks())

	removed, err := store.RemoveAt(2)
	require.NoError(t, err)
	assert.Equal(t, "b", removed)
	assert.Equal(t, []string{"a", "c"}, store.Tasks())
	assert.Equal(t, "a\nc\n", readFile(t, store.Path()))
}

func TestRemoveAtEmpty(t *testing.T) {
	store := newTestStore(t, "")

	_, err := store.RemoveAt(1)
	assert.ErrorIs(t, err, ErrNoTasks)
}

func TestExampleScenario(t *testing.T) {
	store := newTestStore(t, "buy milk\nwalk dog\n")
	require.Equal(t, []string{"buy milk", "walk dog"}, store.Tasks())

	_, err := store.RemoveAt(1)
	require.NoError(t, err)

	assert.Equal(t, []string{"walk dog"}, store.Tasks())
	assert.Equal(t, "walk dog\n", readFile(t, store.Path()))
}

func TestMatches(t *testing.T) {
	store := newTestStore(t, "Buy milk\nwalk dog\nbuy BREAD\n")

	matches := store.Matches("  BUY ")
	assert.Equal(t, []Match{{Index: 0, Task: "Buy milk"}, {Index: 2, Task: "buy BREAD"}}, matches)

	assert.Empty(t, store.Matches("cat"))
}

func TestRemoveByName(t *testing.T) {
	never := func([]string) (int, error) {
		t.Fatal("chooser should not be called")
		return 0, nil
	}

	t.Run("no match", func(t *testing.T) {
		store := newTestStore(t, "a\nb\n")
		_, err := store.RemoveByName("zzz", never)
		assert.ErrorIs(t, err, ErrNoMatch)
		assert.Equal(t, []string{"a", "b"}, store.Tasks())
	})

	t.Run("single match removed directly", func(t *testing.T) {
		store := newTestStore(t, "buy milk\nwalk dog\n")
		removed, err := store.RemoveByName("DOG", never)
		require.NoError(t, err)
		assert.Equal(t, "walk dog", removed)
		assert.Equal(t, "buy milk\n", readFile(t, store.Path()))
	})

	t.Run("multiple matches use the choice", func(t *testing.T) {
		store := newTestStore(t, "buy milk\nwalk dog\nbuy bread\n")

		var offered []string
		removed, err := store.RemoveByName("buy", func(c []string) (int, error) {
			offered = c
			return 2, nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"buy milk", "buy bread"}, offered)
		assert.Equal(t, "buy bread", removed)
		assert.Equal(t, []string{"buy milk", "walk dog"}, store.Tasks())
	})

	t.Run("invalid choice leaves list", func(t *testing.T) {
		store := newTestStore(t, "buy milk\nbuy bread\n")
		for _, choice := range []int{0, 3, -1} {
			_, err := store.RemoveByName("buy", func([]string) (int, error) { return choice, nil })
			assert.ErrorIs(t, err, ErrInvalidChoice)
		}
		assert.Equal(t, []string{"buy milk", "buy bread"}, store.Tasks())
		assert.Equal(t, "buy milk\nbuy bread\n", readFile(t, store.Path()))
	})

	t.Run("chooser error leaves list", func(t *testing.T) {
		store := newTestStore(t, "buy milk\nbuy bread\n")
		boom := errors.New("boom")
		_, err := store.RemoveByName("buy", func([]string) (int, error) { return 1, boom })
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("nil chooser never picks implicitly", func(t *testing.T) {
		store := newTestStore(t, "buy milk\nbuy bread\n")
		_, err := store.RemoveByName("buy", nil)
		assert.ErrorIs(t, err, ErrInvalidChoice)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("empty list", func(t *testing.T) {
		store := newTestStore(t, "")
		_, err := store.RemoveByName("x", never)
		assert.ErrorIs(t, err, ErrNoTasks)
	})
}

func TestInsertAt(t *testing.T) {
	store := newTestStore(t, "a\nc\n")

	task, err := store.InsertAt(2, " b ")
	require.NoError(t, err)
	assert.Equal(t, "b", task)
	assert.Equal(t, []string{"a", "b", "c"}, store.Tasks())

	_, err = store.InsertAt(1, "first")
	require.NoError(t, err)
	_, err = store.InsertAt(5, "last")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "a", "b", "c", "last"}, store.Tasks())
	assert.Equal(t, "first\na\nb\nc\nlast\n", readFile(t, store.Path()))

	for _, pos := range []int{0, 7, -3} {
		_, err := store.InsertAt(pos, "x")
		assert.ErrorIs(t, err, ErrOutOfRange, "pos %d", pos)
	}

	_, err = store.InsertAt(2, "   ")
	assert.ErrorIs(t, err, ErrEmptyTask)
	assert.Equal(t, 5, store.Len())
}

func TestInsertAtEmptyBehavesLikeAdd(t *testing.T) {
	store := newTestStore(t, "")

	task, err := store.InsertAt(42, "only")
	require.NoError(t, err)
	assert.Equal(t, "only", task)
	assert.Equal(t, []string{"only"}, store.Tasks())

	empty := newTestStore(t, "")
	_, err = empty.InsertAt(1, " ")
	assert.ErrorIs(t, err, ErrEmptyTask)
}

func TestCheckInsertPosition(t *testing.T) {
	store := newTestStore(t, "a\nb\n")

	assert.NoError(t, store.CheckInsertPosition(1))
	assert.NoError(t, store.CheckInsertPosition(3))
	assert.ErrorIs(t, store.CheckInsertPosition(0), ErrOutOfRange)
	assert.ErrorIs(t, store.CheckInsertPosition(4), ErrOutOfRange)
}

func TestClearAll(t *testing.T) {
	for _, answer := range []string{"n", "N", "", "maybe", "yess", "no"} {
		t.Run("cancel "+answer, func(t *testing.T) {
			store := newTestStore(t, "a\nb\n")
			_, err := store.ClearAll(answer)
			assert.ErrorIs(t, err, ErrCancelled)
			assert.Equal(t, []string{"a", "b"}, store.Tasks())
		})
	}

	for _, answer := range []string{"y", "Y", "yes", "YES", " Yes "} {
		t.Run("confirm "+answer, func(t *testing.T) {
			store := newTestStore(t, "a\nb\n")
			n, err := store.ClearAll(answer)
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			assert.Equal(t, 0, store.Len())
			assert.Equal(t, "", readFile(t, store.Path()))
		})
	}

	empty := newTestStore(t, "")
	_, err := empty.ClearAll("y")
	assert.ErrorIs(t, err, ErrNoTasks)
}

func TestChanged(t *testing.T) {
	store := newTestStore(t, "a\n")
	assert.False(t, store.Changed())

	_, err := store.Add("b")
	require.NoError(t, err)
	assert.False(t, store.Changed(), "own save should not count as a change")

	require.NoError(t, os.WriteFile(store.Path(), []byte("a\nb\nexternal\n"), 0644))
	assert.True(t, store.Changed())

	_, err = store.Load()
	require.NoError(t, err)
	assert.False(t, store.Changed())
	assert.Equal(t, []string{"a", "b", "external"}, store.Tasks())
}

func TestChangedAfterDelete(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("rename semantics differ")
	}
	store := newTestStore(t, "a\n")

	require.NoError(t, os.Remove(store.Path()))
	assert.True(t, store.Changed())
}

// Property-based tests

func taskGen() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z0-9][A-Za-z0-9 .,!?'-]{0,30}[A-Za-z0-9.!?]`)
}

func storeWith(t *rapid.T, dir string, tasks []string) *Store {
	path := filepath.Join(dir, fmt.Sprintf("tasks-%d.txt", storeCounter.Add(1)))
	store := NewStore(path)
	store.tasks = slices.Clone(tasks)
	if err := store.Save(); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}
	return store
}

func TestRoundTripProperty(t *testing.T) {
	dir := t.TempDir()

	rapid.Check(t, func(rt *rapid.T) {
		tasks := rapid.SliceOf(taskGen()).Draw(rt, "tasks")

		store := storeWith(rt, dir, tasks)

		reloaded := NewStore(store.Path())
		if _, err := reloaded.Load(); err != nil {
			rt.Fatalf("load failed: %v", err)
		}

		got := reloaded.Tasks()
		if len(tasks) == 0 && len(got) == 0 {
			return
		}
		if !slices.Equal(got, tasks) {
			rt.Fatalf("round trip mismatch: saved %q, loaded %q", tasks, got)
		}
	})
}

func TestRemoveAtProperty(t *testing.T) {
	dir := t.TempDir()

	rapid.Check(t, func(rt *rapid.T) {
		tasks := rapid.SliceOfN(taskGen(), 0, 10).Draw(rt, "tasks")
		pos := rapid.IntRange(-2, len(tasks)+2).Draw(rt, "pos")

		store := storeWith(rt, dir, tasks)
		_, err := store.RemoveAt(pos)

		if pos < 1 || pos > len(tasks) {
			if err == nil {
				rt.Fatalf("expected rejection for pos %d of %d", pos, len(tasks))
			}
			if !slices.Equal(store.Tasks(), tasks) {
				rt.Fatalf("rejected removal changed the list")
			}
			return
		}

		want := slices.Delete(slices.Clone(tasks), pos-1, pos)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(store.Tasks(), want) {
			rt.Fatalf("got %q, want %q", store.Tasks(), want)
		}
	})
}

func TestInsertAtEndMatchesAddProperty(t *testing.T) {
	dir := t.TempDir()

	rapid.Check(t, func(rt *rapid.T) {
		tasks := rapid.SliceOfN(taskGen(), 0, 10).Draw(rt, "tasks")
		text := taskGen().Draw(rt, "text")

		inserted := storeWith(rt, dir, tasks)
		added := storeWith(rt, dir, tasks)

		if _, err := inserted.InsertAt(len(tasks)+1, text); err != nil {
			rt.Fatalf("insert failed: %v", err)
		}
		if _, err := added.Add(text); err != nil {
			rt.Fatalf("add failed: %v", err)
		}

		if !slices.Equal(inserted.Tasks(), added.Tasks()) {
			rt.Fatalf("insert at end %q differs from add %q", inserted.Tasks(), added.Tasks())
		}
	})
}

func TestWhitespaceAddProperty(t *testing.T) {
	dir := t.TempDir()

	rapid.Check(t, func(rt *rapid.T) {
		tasks := rapid.SliceOfN(taskGen(), 0, 5).Draw(rt, "tasks")
		blank := rapid.StringMatching(`[ \t]{0,8}`).Draw(rt, "blank")

		store := storeWith(rt, dir, tasks)
		if _, err := store.Add(blank); !errors.Is(err, ErrEmptyTask) {
			rt.Fatalf("expected ErrEmptyTask, got %v", err)
		}
		if store.Len() != len(tasks) {
			rt.Fatalf("length changed from %d to %d", len(tasks), store.Len())
		}
	})
}

func TestViewIsIdempotentProperty(t *testing.T) {
	dir := t.TempDir()

	rapid.Check(t, func(rt *rapid.T) {
		tasks := rapid.SliceOfN(taskGen(), 0, 10).Draw(rt, "tasks")

		store := storeWith(rt, dir, tasks)
		before, err := os.ReadFile(store.Path())
		if err != nil {
			rt.Fatalf("read failed: %v", err)
		}

		first := store.Tasks()
		second := store.Tasks()
		matched := store.Matches("")

		after, err := os.ReadFile(store.Path())
		if err != nil {
			rt.Fatalf("read failed: %v", err)
		}

		if !slices.Equal(first, second) || len(matched) != len(first) {
			rt.Fatalf("repeated views differ: %q vs %q", first, second)
		}
		if string(before) != string(after) || store.Changed() {
			rt.Fatalf("viewing modified the backing file")
		}
	})
}
