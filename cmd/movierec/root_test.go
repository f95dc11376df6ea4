package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movies.csv")
	require.NoError(t, os.WriteFile(path, []byte("movieId,title,genres\n"+
		"1,Toy Story,Animation|Comedy\n"+
		"2,Heat,Action|Crime\n"+
		"3,Toy Story 2,Animation|Comedy\n"), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTitleCommand(t *testing.T) {
	path := writeCatalog(t)
	out, err := run(t, "title", "--catalog", path, "toy", "story")
	require.NoError(t, err)
	assert.Contains(t, out, "Movies similar to Toy Story (match 100)")
	assert.Contains(t, out, " 1. Toy Story 2")
	assert.Contains(t, out, " 2. Heat")
}

func TestGenreCommand(t *testing.T) {
	path := writeCatalog(t)
	out, err := run(t, "genre", "-c", path, "comedy")
	require.NoError(t, err)
	assert.Contains(t, out, "Comedy movies:")
	assert.Contains(t, out, " 1. Toy Story\n")
	assert.Contains(t, out, " 2. Toy Story 2\n")

	_, err = run(t, "genre", "-c", path, "--exact", "crim")
	assert.Error(t, err)
}

func TestGenresCommand_JSON(t *testing.T) {
	path := writeCatalog(t)
	out, err := run(t, "genres", "-c", path, "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `["action","animation","comedy","crime"]`, out)
}

func TestMissingCatalog(t *testing.T) {
	_, err := run(t, "genres", "--catalog", "")
	assert.Error(t, err)
}
