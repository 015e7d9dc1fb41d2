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

//Package packer bundles files into a single compressed archive.
package packer

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"
)

var (
	//ErrNoInputs is returned when there are no input files, or when all of
	//them are empty.
	ErrNoInputs = errors.New("no input data")
	//ErrModeMismatch is returned when the inputs cannot be represented in the
	//selected mode, e.g. multiple files in RawBzip2 mode.
	ErrModeMismatch = errors.New("inputs do not fit archive mode")
	//ErrIOFailure is returned (together with the original error) when reading
	//an input or writing the output fails.
	ErrIOFailure = errors.New("I/O failure")
	//ErrUnknownMode is returned for undefined Mode values.
	ErrUnknownMode = errors.New("unknown archive mode")
)

//Option configures CreateArchive.
type Option func(*options)

type options struct {
	arcName func(path string) string
	modTime *time.Time
}

//WithArcName replaces DefaultArcName as the function that chooses the path
//under which an input file is stored in tar and cpio archives.
func WithArcName(arcName func(path string) string) Option {
	return func(o *options) {
		o.arcName = arcName
	}
}

//WithModTime records the given modification time for all archive entries,
//instead of the inputs' actual mtimes. Use this to build reproducible
//archives.
func WithModTime(t time.Time) Option {
	return func(o *options) {
		o.modTime = &t
	}
}

//DefaultArcName stores a file under its parent directory's name and its own
//name, e.g. "/var/log/anaconda/syslog" becomes "anaconda/syslog". Files
//without a named parent directory are stored under their basename.
func DefaultArcName(inputPath string) string {
	base := filepath.Base(inputPath)
	parent := filepath.Base(filepath.Dir(inputPath))
	if parent == "." || parent == string(filepath.Separator) {
		return base
	}
	return path.Join(filepath.ToSlash(parent), base)
}

//inputFile is an input that has passed validation.
type inputFile struct {
	Path    string
	ArcName string
	Size    int64
	Mode    os.FileMode
	ModTime time.Time
}

//CreateArchive writes the given input files into a new archive at outPath.
//
//The archive is first written to a temporary file next to outPath, and only
//renamed to outPath when it is complete. On error, outPath is left untouched.
func CreateArchive(outPath string, inputs []string, mode Mode, opts ...Option) error {
	if _, ok := mode.info(); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	o := options{arcName: DefaultArcName}
	for _, opt := range opts {
		opt(&o)
	}

	files, err := collectInputs(inputs, mode, o)
	if err != nil {
		return err
	}
	return writeAtomically(outPath, files, mode)
}

//writeAtomically writes the archive into a temporary file next to outPath and
//renames it into place once it is complete.
func writeAtomically(outPath string, files []inputFile, mode Mode) (err error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(outPath), "."+filepath.Base(outPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	defer func() {
		if err != nil {
			tmpFile.Close()
			os.Remove(tmpFile.Name())
		}
	}()

	err = writeArchive(tmpFile, files, mode)
	if err != nil {
		return err
	}
	//CreateTemp creates the file with mode 0600
	err = tmpFile.Chmod(0644)
	if err == nil {
		err = tmpFile.Sync()
	}
	if err == nil {
		err = tmpFile.Close()
	}
	if err == nil {
		err = os.Rename(tmpFile.Name(), outPath)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

//collectInputs checks the inputs against the mode's requirements.
func collectInputs(inputs []string, mode Mode, o options) ([]inputFile, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no input files given", ErrNoInputs)
	}
	if mode.SingleInput() && len(inputs) > 1 {
		return nil, fmt.Errorf("%w: %s takes exactly one input file, got %d", ErrModeMismatch, mode, len(inputs))
	}

	files := make([]inputFile, 0, len(inputs))
	var totalSize int64
	for _, inputPath := range inputs {
		fi, err := os.Stat(inputPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
		}
		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %s is not a regular file", ErrModeMismatch, inputPath)
		}

		f := inputFile{
			Path:    inputPath,
			ArcName: o.arcName(inputPath),
			Size:    fi.Size(),
			Mode:    fi.Mode().Perm(),
			ModTime: fi.ModTime(),
		}
		if o.modTime != nil {
			f.ModTime = *o.modTime
		}
		if mode == Ar {
			f.ArcName = filepath.Base(inputPath)
			if len(f.ArcName) > maxArNameLength {
				return nil, fmt.Errorf("%w: name of %s is longer than %d bytes", ErrModeMismatch, inputPath, maxArNameLength)
			}
		}

		files = append(files, f)
		totalSize += f.Size
	}

	if totalSize == 0 {
		return nil, fmt.Errorf("%w: all input files are empty", ErrNoInputs)
	}
	return files, nil
}
