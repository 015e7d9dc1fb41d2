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
	"fmt"
	"io"
	"os"

	"github.com/blakesmith/ar"
	"github.com/dsnet/compress/bzip2"
	cpio "github.com/surma/gocpio"
	"github.com/ulikunitz/xz"
)

//The name field of an ar header has 16 bytes, and names are not terminated.
const maxArNameLength = 16

//writeArchive streams the archive for the given mode into w.
func writeArchive(w io.Writer, files []inputFile, mode Mode) error {
	var err error
	switch mode {
	case RawBzip2:
		err = compressWith(w, newBzip2Writer, func(cw io.Writer) error {
			return copyInput(cw, files[0])
		})
	case TarBzip2:
		err = compressWith(w, newBzip2Writer, func(cw io.Writer) error {
			return writeTar(cw, files)
		})
	case CpioBzip2:
		err = compressWith(w, newBzip2Writer, func(cw io.Writer) error {
			return writeCpio(cw, files)
		})
	case TarXZ:
		err = compressWith(w, newXZWriter, func(cw io.Writer) error {
			return writeTar(cw, files)
		})
	case Ar:
		err = writeAr(w, files)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

func newBzip2Writer(w io.Writer) (io.WriteCloser, error) {
	return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestCompression})
}

func newXZWriter(w io.Writer) (io.WriteCloser, error) {
	return xz.NewWriter(w)
}

//compressWith runs fill() against a compressing writer on top of w. The
//compressor is always closed so that its trailer gets written.
func compressWith(w io.Writer, newCompressor func(io.Writer) (io.WriteCloser, error), fill func(io.Writer) error) error {
	cw, err := newCompressor(w)
	if err != nil {
		return err
	}
	err = fill(cw)
	closeErr := cw.Close()
	if err != nil {
		return err
	}
	return closeErr
}

//copyInput writes exactly f.Size bytes from the input file into w, so that
//the payload always matches the size that went into the archive header.
func copyInput(w io.Writer, f inputFile) error {
	fh, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer fh.Close()
	_, err = io.CopyN(w, fh, f.Size)
	if err == io.EOF {
		return fmt.Errorf("%s shrank while being archived", f.Path)
	}
	return err
}

func writeTar(w io.Writer, files []inputFile) error {
	tw := tar.NewWriter(w)
	for _, f := range files {
		err := tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     f.ArcName,
			Mode:     int64(f.Mode),
			Size:     f.Size,
			ModTime:  f.ModTime,
		})
		if err != nil {
			return err
		}
		err = copyInput(tw, f)
		if err != nil {
			return err
		}
	}
	return tw.Close()
}

func writeCpio(w io.Writer, files []inputFile) error {
	cw := cpio.NewWriter(w)
	for _, f := range files {
		err := cw.WriteHeader(&cpio.Header{
			Name:  f.ArcName,
			Mode:  int64(f.Mode),
			Mtime: f.ModTime.Unix(),
			Size:  f.Size,
			Type:  cpio.TYPE_REG,
		})
		if err != nil {
			return err
		}
		err = copyInput(cw, f)
		if err != nil {
			return err
		}
	}
	//Close() writes the trailer record
	return cw.Close()
}

func writeAr(w io.Writer, files []inputFile) error {
	aw := ar.NewWriter(w)
	err := aw.WriteGlobalHeader()
	if err != nil {
		return err
	}
	for _, f := range files {
		//the ar writer pads every Write() call of odd length, so the whole
		//content must go through a single call
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return err
		}
		if int64(len(data)) != f.Size {
			return fmt.Errorf("%s changed size while being archived", f.Path)
		}
		err = aw.WriteHeader(&ar.Header{
			Name:    f.ArcName,
			ModTime: f.ModTime,
			Mode:    int64(f.Mode),
			Size:    f.Size,
		})
		if err != nil {
			return err
		}
		if len(data) > 0 {
			_, err = aw.Write(data)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
