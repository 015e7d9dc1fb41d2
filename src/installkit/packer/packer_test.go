/*******************************************************************************
*
* Copyright 2016 Stefan Majewsky <majewsky@gmx.net>
*
* This file is part of Holo.
*
* Holo is free software: you can redistribute it and/or modify it under the
* terms of the GNU General Public License as published by the Free Software
* Foundation, either version 3 of the License, or (at your option) any later
* version.
*
* Holo is distributed in the hope that it will be useful, but WITHOUT ANY
* WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR
* A PARTICULAR PURPOSE. See the GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License along with
* Holo. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

package packer

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blakesmith/ar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cpio "github.com/surma/gocpio"
	"github.com/ulikunitz/xz"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

//readTar returns the contents of all entries, keyed by name.
func readTar(t *testing.T, r io.Reader) (map[string]string, []string) {
	t.Helper()
	contents := make(map[string]string)
	var names []string
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		contents[hdr.Name] = string(data)
		names = append(names, hdr.Name)
	}
	return contents, names
}

//assertNoLeftovers checks that dir contains nothing but the expected files.
func assertNoLeftovers(t *testing.T, dir string, expected ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, expected, names)
}

func TestRawBzip2RoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "in", "letters.txt"), alphabet)
	outDir := t.TempDir()
	out := filepath.Join(outDir, "letters.txt.bz2")

	require.NoError(t, CreateArchive(out, []string{in}, RawBzip2))

	fh, err := os.Open(out)
	require.NoError(t, err)
	defer fh.Close()
	data, err := io.ReadAll(bzip2.NewReader(fh))
	require.NoError(t, err)
	assert.Equal(t, alphabet, string(data))
	assertNoLeftovers(t, outDir, "letters.txt.bz2")

	fi, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), fi.Mode().Perm())
}

func TestRawBzip2RejectsMultipleInputs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.txt"), "a")
	b := writeFile(t, filepath.Join(dir, "b.txt"), "b")
	outDir := t.TempDir()

	err := CreateArchive(filepath.Join(outDir, "out.bz2"), []string{a, b}, RawBzip2)
	assert.ErrorIs(t, err, ErrModeMismatch)
	assertNoLeftovers(t, outDir)
}

func TestNoInputs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	empty1 := writeFile(t, filepath.Join(dir, "empty1"), "")
	empty2 := writeFile(t, filepath.Join(dir, "empty2"), "")
	outDir := t.TempDir()
	out := filepath.Join(outDir, "out")

	for _, mode := range Modes {
		err := CreateArchive(out, nil, mode)
		assert.ErrorIs(t, err, ErrNoInputs, mode.String())

		err = CreateArchive(out, []string{empty1}, mode)
		assert.ErrorIs(t, err, ErrNoInputs, mode.String())
	}
	err := CreateArchive(out, []string{empty1, empty2}, TarBzip2)
	assert.ErrorIs(t, err, ErrNoInputs)
	err = CreateArchive(out, []string{empty1, empty2}, TarXZ)
	assert.ErrorIs(t, err, ErrNoInputs)
	assertNoLeftovers(t, outDir)
}

func TestEmptyFileNextToNonEmptyFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	empty := writeFile(t, filepath.Join(dir, "x", "empty"), "")
	full := writeFile(t, filepath.Join(dir, "x", "full"), "data")
	out := filepath.Join(t.TempDir(), "out.tar.bz2")

	require.NoError(t, CreateArchive(out, []string{empty, full}, TarBzip2))

	fh, err := os.Open(out)
	require.NoError(t, err)
	defer fh.Close()
	contents, names := readTar(t, bzip2.NewReader(fh))
	assert.Equal(t, []string{"x/empty", "x/full"}, names)
	assert.Equal(t, "", contents["x/empty"])
	assert.Equal(t, "data", contents["x/full"])
}

func TestInputErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	good := writeFile(t, filepath.Join(dir, "good"), "good")
	outDir := t.TempDir()
	out := filepath.Join(outDir, "out.tar.xz")

	err := CreateArchive(out, []string{good, filepath.Join(dir, "missing")}, TarXZ)
	assert.ErrorIs(t, err, ErrIOFailure)
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = CreateArchive(out, []string{good, dir}, TarXZ)
	assert.ErrorIs(t, err, ErrModeMismatch)

	err = CreateArchive(out, []string{good}, Mode(42))
	assert.ErrorIs(t, err, ErrUnknownMode)

	err = CreateArchive(filepath.Join(dir, "no-such-dir", "out"), []string{good}, TarXZ)
	assert.ErrorIs(t, err, ErrIOFailure)

	assertNoLeftovers(t, outDir)
}

func TestFailureKeepsExistingOutput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a"), "a")
	b := writeFile(t, filepath.Join(dir, "b"), "b")
	outDir := t.TempDir()
	out := writeFile(t, filepath.Join(outDir, "out.bz2"), "previous")

	err := CreateArchive(out, []string{a, b}, RawBzip2)
	require.Error(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
	assertNoLeftovers(t, outDir, "out.bz2")
}

func TestTarXZRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	inputs := []string{
		writeFile(t, filepath.Join(dir, "etc", "hosts"), "127.0.0.1 localhost\n"),
		writeFile(t, filepath.Join(dir, "log", "syslog"), strings.Repeat(alphabet, 1000)),
	}
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	out := filepath.Join(t.TempDir(), "out.tar.xz")

	require.NoError(t, CreateArchive(out, inputs, TarXZ, WithModTime(mtime)))

	fh, err := os.Open(out)
	require.NoError(t, err)
	defer fh.Close()
	xr, err := xz.NewReader(fh)
	require.NoError(t, err)

	tr := tar.NewReader(xr)
	hdr, err := tr.Next()
	require.NoError(t, err)
	assert.Equal(t, "etc/hosts", hdr.Name)
	assert.Equal(t, int64(0644), hdr.Mode)
	assert.True(t, mtime.Equal(hdr.ModTime))
	data, err := io.ReadAll(tr)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1 localhost\n", string(data))

	hdr, err = tr.Next()
	require.NoError(t, err)
	assert.Equal(t, "log/syslog", hdr.Name)
	data, err = io.ReadAll(tr)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat(alphabet, 1000), string(data))

	_, err = tr.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReproducibleOutput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "data", "file"), alphabet)
	outDir := t.TempDir()
	mtime := time.Unix(0, 0)

	for _, mode := range Modes {
		out1 := filepath.Join(outDir, "1"+mode.Extension())
		out2 := filepath.Join(outDir, "2"+mode.Extension())
		require.NoError(t, CreateArchive(out1, []string{in}, mode, WithModTime(mtime)))
		require.NoError(t, CreateArchive(out2, []string{in}, mode, WithModTime(mtime)))

		data1, err := os.ReadFile(out1)
		require.NoError(t, err)
		data2, err := os.ReadFile(out2)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(data1, data2), mode.String())
	}
}

func TestCpioBzip2RoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	inputs := []string{
		writeFile(t, filepath.Join(dir, "usr", "one"), "1"),
		writeFile(t, filepath.Join(dir, "usr", "three"), "333"),
	}
	out := filepath.Join(t.TempDir(), "payload.cpio.bz2")

	arcName := func(path string) string { return "./usr/" + filepath.Base(path) }
	require.NoError(t, CreateArchive(out, inputs, CpioBzip2, WithArcName(arcName)))

	fh, err := os.Open(out)
	require.NoError(t, err)
	defer fh.Close()
	cr := cpio.NewReader(bzip2.NewReader(fh))

	expected := []struct{ name, content string }{
		{"./usr/one", "1"},
		{"./usr/three", "333"},
	}
	for _, e := range expected {
		hdr, err := cr.Next()
		require.NoError(t, err)
		require.False(t, hdr.IsTrailer())
		assert.Equal(t, e.name, hdr.Name)
		assert.Equal(t, int64(len(e.content)), hdr.Size)
		assert.Equal(t, int64(cpio.TYPE_REG), int64(hdr.Type))
		data, err := io.ReadAll(cr)
		require.NoError(t, err)
		assert.Equal(t, e.content, string(data))
	}
	hdr, err := cr.Next()
	require.NoError(t, err)
	assert.True(t, hdr.IsTrailer())
}

func TestArRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	inputs := []string{
		writeFile(t, filepath.Join(dir, "a", "odd"), "odd"),
		writeFile(t, filepath.Join(dir, "b", "even"), "even"),
	}
	mtime := time.Unix(1500000000, 0)
	outDir := t.TempDir()
	out := filepath.Join(outDir, "out.a")

	require.NoError(t, CreateArchive(out, inputs, Ar, WithModTime(mtime)))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("!<arch>\n")))

	rd := ar.NewReader(bytes.NewReader(data))
	for _, e := range []struct{ name, content string }{{"odd", "odd"}, {"even", "even"}} {
		hdr, err := rd.Next()
		require.NoError(t, err)
		assert.Equal(t, e.name, hdr.Name)
		assert.Equal(t, int64(0644), hdr.Mode)
		assert.Equal(t, mtime.Unix(), hdr.ModTime.Unix())
		content, err := io.ReadAll(rd)
		require.NoError(t, err)
		assert.Equal(t, e.content, string(content))
	}
}

func TestArRejectsLongNames(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "a-name-longer-than-sixteen-bytes"), "x")
	outDir := t.TempDir()

	err := CreateArchive(filepath.Join(outDir, "out.a"), []string{in}, Ar)
	assert.ErrorIs(t, err, ErrModeMismatch)
	assertNoLeftovers(t, outDir)
}

func TestDefaultArcName(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"/var/log/anaconda/syslog": "anaconda/syslog",
		"dir/file.txt":             "dir/file.txt",
		"file.txt":                 "file.txt",
		"./file.txt":               "file.txt",
		"/file.txt":                "file.txt",
		"a/b/../c/file":            "c/file",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, DefaultArcName(filepath.FromSlash(input)), input)
	}
}

func TestModes(t *testing.T) {
	t.Parallel()
	for _, mode := range Modes {
		parsed, err := ParseMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
		assert.NotEmpty(t, mode.MimeType())
		assert.True(t, strings.HasPrefix(mode.Extension(), "."))
	}
	assert.Equal(t, "application/x-xz", TarXZ.MimeType())
	assert.Equal(t, ".cpio.bz2", CpioBzip2.Extension())
	assert.True(t, RawBzip2.SingleInput())
	assert.False(t, Ar.SingleInput())

	_, err := ParseMode("zip")
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.Equal(t, "mode(42)", Mode(42).String())
}

func TestWriteFailureRemovesTempFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	//the file is shorter than the size recorded when it was validated
	shrunk := writeFile(t, filepath.Join(dir, "shrunk"), "abc")
	files := []inputFile{{
		Path:    shrunk,
		ArcName: "shrunk",
		Size:    10,
		Mode:    0644,
		ModTime: time.Unix(0, 0),
	}}
	outDir := t.TempDir()
	out := writeFile(t, filepath.Join(outDir, "out"), "previous")

	for _, mode := range Modes {
		err := writeAtomically(out, files, mode)
		assert.ErrorIs(t, err, ErrIOFailure, mode.String())
		assertNoLeftovers(t, outDir, "out")
	}
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}
