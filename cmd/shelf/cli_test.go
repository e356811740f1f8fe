package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/shelf"
	"github.com/aretw0/shelf/pkg/core"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, data := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	}
}

// addBlink adds a small library to a fresh repository and returns the repository root.
func addBlink(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	root := filepath.Join(tmp, "libs")
	writeTree(t, src, map[string]string{
		"library.properties": "name=blink\nversion=1.0.0\nsentence=Blinks an LED.\n",
		"blink/blink.h":      "#pragma once\n",
		"blink.cpp":          "#include \"blink/blink.h\"\n",
	})

	out, err := run(t, "--root", root, "add", src)
	require.NoError(t, err)
	assert.Equal(t, "added blink 1.0.0 (current layout)\n", out)
	return root
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "shelf version "+shelf.Version+"\n", out)
}

func TestAdd(t *testing.T) {
	root := addBlink(t)

	data, err := os.ReadFile(filepath.Join(root, "blink", "blink.cpp"))
	require.NoError(t, err)
	assert.Equal(t, "#include \"blink.h\"\n", string(data))
	assert.FileExists(t, filepath.Join(root, "blink", "blink.h"))
	assert.FileExists(t, filepath.Join(root, "blink", "library.properties"))
}

func TestAddLegacyLayout(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	root := filepath.Join(tmp, "libs")
	writeTree(t, src, map[string]string{
		"library.properties": "name=servo\nversion=0.2.0\n",
		"servo.h":            "#pragma once\n",
	})

	out, err := run(t, "--root", root, "add", "--layout", "1", src)
	require.NoError(t, err)
	assert.Equal(t, "added servo 0.2.0 (legacy layout)\n", out)
	assert.FileExists(t, filepath.Join(root, "servo", "spark.json"))
	assert.NoFileExists(t, filepath.Join(root, "servo", "library.properties"))

	_, err = run(t, "--root", root, "add", "--layout", "3", src)
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	root := addBlink(t)

	out, err := run(t, "--root", root, "list")
	require.NoError(t, err)
	assert.Equal(t, "blink\n", out)

	out, err = run(t, "--root", root, "list", "--json")
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal([]byte(out), &names))
	assert.Equal(t, []string{"blink"}, names)
}

func TestListMissingRoot(t *testing.T) {
	_, err := run(t, "--root", filepath.Join(t.TempDir(), "missing"), "list")
	assert.Error(t, err)
}

func TestShow(t *testing.T) {
	root := addBlink(t)

	t.Run("Text", func(t *testing.T) {
		out, err := run(t, "--root", root, "show", "blink")
		require.NoError(t, err)
		assert.Contains(t, out, "blink (current layout)\n")
		assert.Contains(t, out, "version:  1.0.0\n")
		assert.Contains(t, out, "source  blink.h\n")
	})

	t.Run("JSON", func(t *testing.T) {
		out, err := run(t, "--root", root, "show", "blink", "--json")
		require.NoError(t, err)
		var view libraryView
		require.NoError(t, json.Unmarshal([]byte(out), &view))
		assert.Equal(t, "blink", view.Name)
		assert.Equal(t, "current", view.Layout)
		assert.Equal(t, "Blinks an LED.", view.Sentence)
		assert.Len(t, view.Files, 2)
	})

	t.Run("YAML", func(t *testing.T) {
		out, err := run(t, "--root", root, "show", "blink", "--yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "name: blink\n")
		assert.Contains(t, out, "layout: current\n")
	})

	t.Run("Not Found", func(t *testing.T) {
		_, err := run(t, "--root", root, "show", "nope")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestUpgrade(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"old/spark.json":     `{"name": "old", "version": "0.1.0"}`,
		"old/firmware/old.h": "#pragma once\n",
		"old/old.cpp":        "#include \"old/old.h\"\n",
	})

	out, err := run(t, "--root", root, "upgrade", "old")
	require.NoError(t, err)
	assert.Equal(t, "upgraded old to the current layout\n", out)

	assert.FileExists(t, filepath.Join(root, "old", "library.properties"))
	assert.NoFileExists(t, filepath.Join(root, "old", "spark.json"))
	data, err := os.ReadFile(filepath.Join(root, "old", "old.cpp"))
	require.NoError(t, err)
	assert.Equal(t, "#include \"old.h\"\n", string(data))
}

func TestPack(t *testing.T) {
	root := addBlink(t)
	archive := filepath.Join(t.TempDir(), "blink.tar.gz")

	out, err := run(t, "--root", root, "pack", "blink", "-o", archive)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+archive+"\n")
	assert.Contains(t, out, "blake3 ")

	data, err := os.ReadFile(archive)
	require.NoError(t, err)
	require.Greater(t, len(data), 2)
	assert.Equal(t, []byte{0x1f, 0x8b}, data[:2])
}

func TestPackInvalid(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"bad/library.properties": "name=bad\nversion=one\n",
		"bad/bad.h":              "#pragma once\n",
	})

	_, err := run(t, "--root", root, "pack", "bad", "-o", filepath.Join(t.TempDir(), "bad.tar.gz"))
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Result.Errors, "version")
	assert.Contains(t, verr.Result.Errors, "sentence")
}

func TestConfigFile(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	root := filepath.Join(tmp, "libs")
	writeTree(t, src, map[string]string{
		"library.properties": "name=blink\nversion=1.0.0\n",
		"blink.h":            "#pragma once\n",
	})
	writeTree(t, root, map[string]string{
		"shelf.yaml": "naming: by-name-at-version\n",
	})

	_, err := run(t, "--root", root, "add", src)
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(root, "blink@1.0.0"))

	out, err := run(t, "--root", root, "show", "blink@1.0.0", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "blink@1.0.0"`)

	// Flags take precedence over the config file.
	_, err = run(t, "--root", root, "--naming", "by-name", "show", "blink@1.0.0")
	assert.ErrorIs(t, err, core.ErrFormat)
}
