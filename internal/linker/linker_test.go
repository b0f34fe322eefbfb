package linker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/loadout-dev/loadout/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkCreatesSymlinkAndMarker(t *testing.T) {
	root := t.TempDir()
	skillDir := mkdir(t, filepath.Join(root, "skills", "my-skill"))
	target := filepath.Join(root, "target")

	action, err := Link("my-skill", skillDir, target, false)
	require.NoError(t, err)
	require.Equal(t, ActionCreated, action)

	dest, err := os.Readlink(filepath.Join(target, "my-skill"))
	require.NoError(t, err)
	require.Equal(t, skillDir, dest)
	require.True(t, IsManaged(target))

	action, err = Link("my-skill", skillDir, target, false)
	require.NoError(t, err)
	require.Equal(t, ActionUnchanged, action)
}

func TestLinkReplacesStaleSymlink(t *testing.T) {
	root := t.TempDir()
	oldDir := mkdir(t, filepath.Join(root, "old", "my-skill"))
	newDir := mkdir(t, filepath.Join(root, "new", "my-skill"))
	target := filepath.Join(root, "target")

	_, err := Link("my-skill", oldDir, target, false)
	require.NoError(t, err)

	action, err := Link("my-skill", newDir, target, false)
	require.NoError(t, err)
	require.Equal(t, ActionUpdated, action)

	dest, err := os.Readlink(filepath.Join(target, "my-skill"))
	require.NoError(t, err)
	require.Equal(t, newDir, dest)
}

func TestLinkRefusesUnmanagedEntry(t *testing.T) {
	root := t.TempDir()
	skillDir := mkdir(t, filepath.Join(root, "skills", "my-skill"))
	target := filepath.Join(root, "target")
	mkdir(t, filepath.Join(target, "my-skill"))

	_, err := Link("my-skill", skillDir, target, false)
	require.True(t, errors.Is(err, ErrUnmanagedTarget))
}

func TestLinkDryRunWritesNothing(t *testing.T) {
	root := t.TempDir()
	skillDir := mkdir(t, filepath.Join(root, "skills", "my-skill"))
	target := filepath.Join(root, "target")

	action, err := Link("my-skill", skillDir, target, true)
	require.NoError(t, err)
	require.Equal(t, ActionCreated, action)
	_, err = os.Stat(target)
	require.True(t, os.IsNotExist(err))
}

func TestCleanRemovesLinksMarkerAndEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target")
	for _, name := range []string{"a", "b"} {
		_, err := Link(name, mkdir(t, filepath.Join(root, "skills", name)), target, false)
		require.NoError(t, err)
	}

	planned, err := Clean(target, true)
	require.NoError(t, err)
	require.Len(t, planned, 2)
	require.True(t, IsManaged(target))

	removed, err := Clean(target, false)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(target, "a"), filepath.Join(target, "b")}, removed)
	_, err = os.Stat(target)
	require.True(t, os.IsNotExist(err))
}

func TestCleanKeepsNonEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target")
	_, err := Link("a", mkdir(t, filepath.Join(root, "skills", "a")), target, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(target, "notes.txt"), []byte("keep"), 0o644))

	_, err = Clean(target, false)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(target, "notes.txt"))
	require.NoError(t, err)
	require.False(t, IsManaged(target))
}

func TestCleanIgnoresUnmanagedDirectory(t *testing.T) {
	target := mkdir(t, filepath.Join(t.TempDir(), "target"))
	require.NoError(t, os.Symlink("/nowhere", filepath.Join(target, "x")))

	removed, err := Clean(target, false)
	require.NoError(t, err)
	require.Empty(t, removed)
	_, err = os.Lstat(filepath.Join(target, "x"))
	require.NoError(t, err)
}

func TestInspect(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target")
	_, err := Link("good", mkdir(t, filepath.Join(root, "skills", "good")), target, false)
	require.NoError(t, err)
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(target, "broken")))
	mkdir(t, filepath.Join(target, "handmade"))

	issues, err := Inspect(target)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	byKind := map[IssueKind]Issue{}
	for _, issue := range issues {
		byKind[issue.Kind] = issue
	}
	assert.Equal(t, "broken", byKind[IssueBrokenSymlink].Name)
	assert.Equal(t, filepath.Join(root, "gone"), byKind[IssueBrokenSymlink].Target)
	assert.Equal(t, "handmade", byKind[IssueUnmanaged].Name)

	none, err := Inspect(filepath.Join(root, "absent"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPlan(t *testing.T) {
	inherit := false
	cfg := &config.Config{
		Global: config.Global{Targets: []string{"/g"}, Skills: []string{"a", "a", "b"}},
		Projects: map[string]*config.Project{
			"/p1": {Skills: []string{"c"}},
			"/p2": {Skills: []string{"d"}, Inherit: &inherit},
		},
	}

	plan := Plan(cfg)

	count := map[string]int{}
	for _, p := range plan {
		count[p.Scope]++
	}
	assert.Equal(t, 2, count["global"])
	assert.Equal(t, 3*len(config.ProjectSubdirs), count["/p1"])
	assert.Equal(t, len(config.ProjectSubdirs), count["/p2"])
	assert.Equal(t, filepath.Join("/g", "a"), plan[0].LinkPath())
}

func mkdir(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
	return path
}
