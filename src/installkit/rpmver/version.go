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

package rpmver

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

//ErrParse is returned by Parse for strings that contain neither a version
//nor a release.
var ErrParse = errors.New("cannot parse version")

//Version is an RPM version label in the form "[epoch:]version[-release]".
type Version struct {
	//Epoch is empty when the input had no "epoch:" prefix. An empty epoch
	//compares like "0".
	Epoch   string
	Version string
	Release string
}

//Parse splits a string of the form "[epoch:]version-release" into its parts.
//The release is everything after the first "-", so it may be empty (if there
//is no "-") or contain further dashes. The epoch prefix is only recognized if
//it consists of digits.
func Parse(input string) (Version, error) {
	var v Version
	rest := input
	if idx := strings.IndexByte(rest, ':'); idx > 0 && isAllDigits(rest[:idx]) {
		v.Epoch = rest[:idx]
		rest = rest[idx+1:]
	}

	if idx := strings.IndexByte(rest, '-'); idx >= 0 {
		v.Version, v.Release = rest[:idx], rest[idx+1:]
	} else {
		v.Version = rest
	}

	if v.Version == "" && v.Release == "" {
		return Version{}, fmt.Errorf("%w: %q has neither version nor release", ErrParse, input)
	}
	return v, nil
}

//MustParse is like Parse, but panics on error. It is intended for tables of
//constant versions.
func MustParse(input string) Version {
	v, err := Parse(input)
	if err != nil {
		panic(err.Error())
	}
	return v
}

func isAllDigits(s string) bool {
	for idx := 0; idx < len(s); idx++ {
		if !isDigit(s[idx]) {
			return false
		}
	}
	return s != ""
}

//String returns the "[epoch:]version-release" representation. It is the
//inverse of Parse for every input that contains a "-".
func (v Version) String() string {
	s := v.Version
	if v.Epoch != "" {
		s = v.Epoch + ":" + s
	}
	if v.Release != "" {
		s += "-" + v.Release
	}
	return s
}

func (v Version) epochOrZero() string {
	if v.Epoch == "" {
		return "0"
	}
	return v.Epoch
}

//Compare orders two versions by epoch, then version, then release, each
//with the rules of the package-level Compare function.
func (v Version) Compare(other Version) int {
	if c := Compare(v.epochOrZero(), other.epochOrZero()); c != 0 {
		return c
	}
	if c := Compare(v.Version, other.Version); c != 0 {
		return c
	}
	return Compare(v.Release, other.Release)
}

//Less reports whether v is older than other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

//Equal reports whether v and other denote the same version. Note that this
//is weaker than ==, e.g. "1.01" equals "1.1".
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

//Sort sorts the given versions from oldest to newest.
func Sort(versions []Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].Less(versions[j])
	})
}
