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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/ogier/pflag"

	"github.com/holocm/installkit/src/dump-package/impl"
)

//This program renders a textual representation of the archives, headers and
//packages produced by installkit, including the compression and archive
//formats used and all metadata contained within them. It is called like
//
//    ./build/dump-package < $archive
//
//and renders output like this:
//
//    $ installkit pack --mode tar-xz -o foo.tar.xz foo/bar
//    $ ./build/dump-package < foo.tar.xz
//    XZ-compressed POSIX tar archive
//        >> foo/bar is regular file (mode: 644, owner: 0, group: 0, mtime: 1500000000), content is data as shown below
//            Hello World!

func main() {
	fs := pflag.NewFlagSet("dump-package", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dump-package [FILE]")
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	input := io.Reader(os.Stdin)
	switch fs.NArg() {
	case 0:
	case 1:
		file, err := os.Open(fs.Arg(0))
		if err != nil {
			showError(err)
			os.Exit(1)
		}
		defer file.Close()
		input = file
	default:
		fs.Usage()
		os.Exit(1)
	}

	data, err := io.ReadAll(input)
	if err != nil {
		showError(err)
		os.Exit(1)
	}

	//recognize the input, while deconstructing it recursively
	dump, err := impl.RecognizeAndDump(data)
	if err != nil {
		showError(err)
		os.Exit(1)
	}
	fmt.Print(dump)
}

func showError(err error) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("!!"), err.Error())
}
