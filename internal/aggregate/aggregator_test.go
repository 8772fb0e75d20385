package aggregate_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/idelchi/dirsize/internal/aggregate"
	"github.com/idelchi/dirsize/internal/fsys"
	"github.com/idelchi/dirsize/internal/fsys/fsystest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSizeOfSubtree(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tree *fsystest.Tree
		root string
		want uint64
	}{
		{
			name: "files and empty subdirectory",
			tree: fsystest.NewTree().File("/r/a", 100).File("/r/b", 200).Dir("/r/empty"),
			root: "/r",
			want: 300,
		},
		{
			name: "nested",
			tree: fsystest.NewTree().
				File("/r/a", 1).
				File("/r/x/b", 10).
				File("/r/x/y/c", 100).
				File("/r/z/d", 1000),
			root: "/r",
			want: 1111,
		},
		{
			name: "inaccessible subdirectory contributes zero",
			tree: fsystest.NewTree().
				File("/r/a", 100).
				File("/r/ok/b", 50).
				File("/r/locked/secret", 9999).
				Deny("/r/locked"),
			root: "/r",
			want: 150,
		},
		{
			name: "inaccessible root",
			tree: fsystest.NewTree().File("/r/a", 100).Deny("/r"),
			root: "/r",
			want: 0,
		},
		{
			name: "missing root",
			tree: fsystest.NewTree(),
			root: "/nope",
			want: 0,
		},
		{
			name: "unreadable file size",
			tree: fsystest.NewTree().File("/r/a", 100).File("/r/b", 7).Deny("/r/b"),
			root: "/r",
			want: 100,
		},
		{
			name: "empty directory",
			tree: fsystest.NewTree().Dir("/r"),
			root: "/r",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			agg := aggregate.New(tt.tree)

			assert.Equal(t, tt.want, agg.SizeOfSubtree(tt.root))
		})
	}
}

func TestProgressCountsFilesAndAbsorbedErrors(t *testing.T) {
	t.Parallel()

	tree := fsystest.NewTree().
		File("/r/a", 100).
		File("/r/b", 200).
		File("/r/locked/c", 5).
		Deny("/r/locked")

	agg := aggregate.New(tree)
	agg.SizeOfSubtree("/r")

	// The denied directory fails both its file and its directory listing.
	assert.Equal(t, aggregate.Progress{Files: 2, Bytes: 300, Errors: 2}, agg.Progress())
}

func TestConcurrentWalksShareCounters(t *testing.T) {
	t.Parallel()

	tree := fsystest.NewTree()
	for _, dir := range []string{"/a", "/b", "/c", "/d"} {
		tree.File(dir+"/f", 10).File(dir+"/sub/g", 5)
	}

	agg := aggregate.New(tree)

	var wg sync.WaitGroup

	results := make([]uint64, 4)

	for i, dir := range []string{"/a", "/b", "/c", "/d"} {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i] = agg.SizeOfSubtree(dir)
		}()
	}

	wg.Wait()

	assert.Equal(t, []uint64{15, 15, 15, 15}, results)
	assert.Equal(t, int64(8), agg.Progress().Files)
	assert.Equal(t, int64(60), agg.Progress().Bytes)
}

func makeTree(t *testing.T) (string, uint64) {
	t.Helper()

	root := t.TempDir()
	files := map[string]int{
		"a.txt":         100,
		"b.txt":         200,
		"sub/c.bin":     3000,
		"sub/deep/d":    1,
		"other/e":       4096,
		"other/f/g/h/i": 17,
	}

	var total uint64

	for name, size := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))

		total += uint64(size)
	}

	require.NoError(t, os.Mkdir(filepath.Join(root, "empty"), 0o755))

	return root, total
}

func TestWalkersAgreeOnRealTree(t *testing.T) {
	t.Parallel()

	root, want := makeTree(t)

	walkers := map[string]aggregate.Walker{
		"sequential": aggregate.New(fsys.OS{}),
		"fastwalk":   aggregate.NewFastWalker(aggregate.WithNumWorkers(2)),
	}

	for name, walker := range walkers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, want, walker.SizeOfSubtree(root))
		})
	}
}

func TestFastWalkerMissingRoot(t *testing.T) {
	t.Parallel()

	walker := aggregate.NewFastWalker()

	assert.Zero(t, walker.SizeOfSubtree(filepath.Join(t.TempDir(), "missing")))
	assert.Positive(t, walker.Progress().Errors)
}

func TestStartProgressReporter(t *testing.T) {
	t.Parallel()

	agg := aggregate.New(fsystest.NewTree().File("/r/a", 42))
	agg.SizeOfSubtree("/r")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := make(chan aggregate.Progress, 1)

	aggregate.StartProgressReporter(ctx, agg, func(p aggregate.Progress) {
		select {
		case ticks <- p:
		default:
		}
	}, time.Millisecond)

	select {
	case p := <-ticks:
		assert.Equal(t, int64(1), p.Files)
		assert.Equal(t, int64(42), p.Bytes)
	case <-time.After(5 * time.Second):
		t.Fatal("no progress reported")
	}
}

func TestStartProgressReporterWithoutHook(t *testing.T) {
	t.Parallel()

	// Must not start a goroutine; goleak verifies this in TestMain.
	aggregate.StartProgressReporter(context.Background(), aggregate.New(fsystest.NewTree()), nil, 0)
}
