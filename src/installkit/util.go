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

	"github.com/fatih/color"
)

var (
	errorMarker   = color.New(color.FgRed, color.Bold)
	warningMarker = color.New(color.FgYellow, color.Bold)
)

//showError prints an error message on the given writer (usually stderr).
func showError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", errorMarker.Sprint("!!"), err.Error())
}

//ShowWarning prints a warning message on the given writer (usually stderr).
func ShowWarning(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", warningMarker.Sprint(">>"), msg)
}
