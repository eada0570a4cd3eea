package scan

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"pdn-thumbnailer/internal/pdntest"
)

func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	doc := pdntest.Document(t, pdntest.Solid(4, 4, color.White))

	pdntest.Write(t, root, "a.pdn", doc)
	pdntest.Write(t, root, "nested/deeper/b.PDN", doc)
	pdntest.Write(t, root, "nested/renamed.bin", doc)
	pdntest.Write(t, root, "nested/fake.pdn", []byte("GIF89a"))
	pdntest.Write(t, root, "notes.txt", []byte("hello"))
	pdntest.Write(t, root, ".hidden/c.pdn", doc)
	pdntest.Write(t, root, ".d.pdn", doc)
	return root
}

func relPaths(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.RelPath
	}
	return out
}

func TestNewWalkerClampsConfig(t *testing.T) {
	t.Parallel()

	w := NewWalker("/x", Config{NumWorkers: 0, ChannelBuffer: -5})
	if w.config.NumWorkers != 1 || w.config.ChannelBuffer != 0 {
		t.Errorf("config = %+v", w.config)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv(EnvWorkers, "")
	if got := DefaultConfig(); got.NumWorkers != 3 || !got.SkipHidden || got.AllFiles {
		t.Errorf("DefaultConfig() = %+v", got)
	}

	t.Setenv(EnvWorkers, "7")
	if got := DefaultConfig().NumWorkers; got != 7 {
		t.Errorf("NumWorkers with override = %d, want 7", got)
	}

	t.Setenv(EnvWorkers, "lots")
	if got := DefaultConfig().NumWorkers; got != 3 {
		t.Errorf("NumWorkers with bad override = %d, want 3", got)
	}
}

func TestWalk(t *testing.T) {
	t.Parallel()
	root := writeTree(t)

	tests := []struct {
		name   string
		config Config
		want   []string
	}{
		{
			name:   "extension filter",
			config: Config{NumWorkers: 2, SkipHidden: true},
			want:   []string{"a.pdn", "nested/deeper/b.PDN"},
		},
		{
			name:   "all files",
			config: Config{NumWorkers: 2, SkipHidden: true, AllFiles: true},
			want:   []string{"a.pdn", "nested/deeper/b.PDN", "nested/renamed.bin"},
		},
		{
			name:   "hidden included",
			config: Config{NumWorkers: 1},
			want:   []string{".d.pdn", ".hidden/c.pdn", "a.pdn", "nested/deeper/b.PDN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := NewWalker(root, tt.config).Walk(context.Background())
			if err != nil {
				t.Fatalf("Walk: %v", err)
			}
			got := relPaths(docs)
			if len(got) != len(tt.want) {
				t.Fatalf("found %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("docs[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWalkDocumentFields(t *testing.T) {
	t.Parallel()
	root := writeTree(t)

	docs, err := NewWalker(root, Config{NumWorkers: 1, SkipHidden: true}).Walk(context.Background())
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	doc := docs[0]

	st, err := os.Stat(filepath.Join(root, "a.pdn"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Path != filepath.Join(root, "a.pdn") || doc.Size != st.Size() || !doc.ModTime.Equal(st.ModTime()) {
		t.Errorf("doc = %+v", doc)
	}
}

func TestWalkStats(t *testing.T) {
	t.Parallel()
	root := writeTree(t)

	w := NewWalker(root, Config{NumWorkers: 3, SkipHidden: true})
	if _, err := w.Walk(context.Background()); err != nil {
		t.Fatalf("Walk: %v", err)
	}

	documents, skipped, errs := w.Stats()
	if documents != 2 || skipped != 1 || errs != 0 {
		t.Errorf("Stats() = %d, %d, %d; want 2, 1, 0", documents, skipped, errs)
	}
}

func TestWalkRootErrors(t *testing.T) {
	t.Parallel()
	root := writeTree(t)

	if _, err := NewWalker(filepath.Join(root, "missing"), DefaultConfig()).Walk(context.Background()); !os.IsNotExist(err) {
		t.Errorf("missing root: err = %v", err)
	}
	if _, err := NewWalker(filepath.Join(root, "a.pdn"), DefaultConfig()).Walk(context.Background()); err == nil {
		t.Error("file root: expected an error")
	}
}

func TestWalkCanceled(t *testing.T) {
	t.Parallel()
	root := writeTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWalker(root, Config{NumWorkers: 2}).Walk(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestWalkEmptyDirectory(t *testing.T) {
	t.Parallel()

	docs, err := NewWalker(t.TempDir(), DefaultConfig()).Walk(context.Background())
	if err != nil || len(docs) != 0 {
		t.Errorf("Walk = %v, %v; want no documents", docs, err)
	}
}
