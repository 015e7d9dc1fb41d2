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
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/ogier/pflag"
	"github.com/ulikunitz/xz"

	"github.com/holocm/installkit/src/installkit/packer"
	"github.com/holocm/installkit/src/installkit/rpm"
	"github.com/holocm/installkit/src/installkit/rpmver"
)

//errUsage is returned by parseFlags after it has already reported the
//problem to the user.
var errUsage = errors.New("usage error")

//newFlagSet prepares a flag set for the given command. Parse errors are
//printed by parseFlags, so the flag set itself stays quiet.
func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}

func parseFlags(env environment, name string, fs *pflag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		showError(env.Stderr, err)
		cmd, _ := commands.Get(name)
		fmt.Fprintf(env.Stderr, "Usage: installkit %s\n", cmd.Usage)
		return errUsage
	}
	return nil
}

//openInput opens the file named by the only positional argument, or stdin if
//there is none.
func openInput(env environment, args []string) (io.ReadCloser, error) {
	switch len(args) {
	case 0:
		return io.NopCloser(env.Stdin), nil
	case 1:
		return os.Open(args[0])
	default:
		return nil, fmt.Errorf("expected at most one input file, got %d", len(args))
	}
}

//writeOutput writes data to the given file, or to stdout if path is empty
//or "-".
func writeOutput(env environment, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := env.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

////////////////////////////////////////////////////////////////////////////////
// installkit tsort

func runTsort(env environment, args []string) int {
	fs := newFlagSet("tsort")
	var checkOnly bool
	fs.BoolVarP(&checkOnly, "check", "c", false, "")
	if parseFlags(env, "tsort", fs, args) != nil {
		return 1
	}

	input, err := openInput(env, fs.Args())
	if err != nil {
		showError(env.Stderr, err)
		return 1
	}
	defer input.Close()

	graph, errs := ParseGraphDefinition(input)
	if len(errs) > 0 {
		(&ErrorCollector{Errors: errs}).Show(env.Stderr)
		return 1
	}

	if checkOnly {
		err := graph.Verify(graph.Items())
		if err != nil {
			showError(env.Stderr, fmt.Errorf("items are not in topological order: %w", err))
			return 2
		}
		log.Debug("items are in topological order")
		return 0
	}

	order, err := graph.Sort()
	if err != nil {
		showError(env.Stderr, err)
		return 2
	}
	for _, item := range order {
		fmt.Fprintln(env.Stdout, item)
	}
	return 0
}

////////////////////////////////////////////////////////////////////////////////
// installkit vercmp

func runVercmp(env environment, args []string) int {
	fs := newFlagSet("vercmp")
	if parseFlags(env, "vercmp", fs, args) != nil {
		return 1
	}
	if fs.NArg() != 2 {
		showError(env.Stderr, fmt.Errorf("expected exactly two versions, got %d", fs.NArg()))
		return 1
	}

	var ec ErrorCollector
	versions := make([]rpmver.Version, 2)
	for idx, arg := range fs.Args() {
		v, err := rpmver.Parse(arg)
		ec.Add(err)
		versions[idx] = v
	}
	if ec.Show(env.Stderr) {
		return 1
	}

	relation := "=="
	switch versions[0].Compare(versions[1]) {
	case -1:
		relation = "<"
	case 1:
		relation = ">"
	}
	fmt.Fprintf(env.Stdout, "%s %s %s\n", fs.Arg(0), relation, fs.Arg(1))
	return 0
}

////////////////////////////////////////////////////////////////////////////////
// installkit header

//regionTags maps the names accepted by `installkit header --region`.
var regionTags = map[string]uint32{
	"immutable":  rpm.RpmtagHeaderImmutable,
	"signatures": rpm.RpmtagHeaderSignatures,
}

func runHeader(env environment, args []string) int {
	fs := newFlagSet("header")
	var region, leadNVR, arch, payloadPath, outputPath string
	fs.StringVarP(&region, "region", "r", "", "")
	fs.StringVarP(&leadNVR, "lead", "l", "", "")
	fs.StringVarP(&arch, "arch", "a", "noarch", "")
	fs.StringVarP(&payloadPath, "payload", "p", "", "")
	fs.StringVarP(&outputPath, "output", "o", "", "")
	if parseFlags(env, "header", fs, args) != nil {
		return 1
	}

	//validate flags
	var ec ErrorCollector
	var regionTag uint32
	if region != "" {
		var err error
		regionTag, err = parseRegionTag(region)
		ec.Add(err)
		if leadNVR != "" {
			ec.Addf("--region cannot be combined with --lead (packages always use the immutable region)")
		}
	}
	if payloadPath != "" && leadNVR == "" {
		ec.Addf("--payload requires --lead")
	}
	var lead *rpm.Lead
	if leadNVR != "" {
		name, version, err := parseNVR(leadNVR)
		if err == nil {
			lead, err = rpm.NewLead(name, version, arch)
		}
		ec.Add(err)
	}
	if ec.Show(env.Stderr) {
		return 1
	}

	input, err := openInput(env, fs.Args())
	if err != nil {
		showError(env.Stderr, err)
		return 1
	}
	defer input.Close()
	entries, errs := ParseHeaderDefinition(input)
	if len(errs) > 0 {
		(&ErrorCollector{Errors: errs}).Show(env.Stderr)
		return 1
	}

	var output []byte
	switch {
	case lead != nil:
		output, err = buildPackage(lead, entries, payloadPath)
	case region != "":
		output, err = buildSealedHeader(entries, regionTag)
	default:
		output, err = rpm.Encode(entries)
	}
	if err == nil {
		err = writeOutput(env, outputPath, output)
	}
	if err != nil {
		showError(env.Stderr, err)
		return 2
	}
	log.Debugf("wrote %d bytes", len(output))
	return 0
}

func parseRegionTag(input string) (uint32, error) {
	if tag, ok := regionTags[input]; ok {
		return tag, nil
	}
	tag, err := strconv.ParseUint(input, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid region tag %q (expected a number, \"immutable\" or \"signatures\")", input)
	}
	return uint32(tag), nil
}

//parseNVR splits a string like "name-1.0-1" or "name-2:1.0-1" at the last two
//dashes.
func parseNVR(input string) (string, rpmver.Version, error) {
	releaseSep := strings.LastIndex(input, "-")
	versionSep := -1
	if releaseSep > 0 {
		versionSep = strings.LastIndex(input[:releaseSep], "-")
	}
	if versionSep <= 0 {
		return "", rpmver.Version{}, fmt.Errorf("invalid package identifier %q (expected NAME-VERSION-RELEASE)", input)
	}
	version, err := rpmver.Parse(input[versionSep+1:])
	if err != nil {
		return "", rpmver.Version{}, err
	}
	return input[:versionSep], version, nil
}

func buildSealedHeader(entries []rpm.Entry, regionTag uint32) ([]byte, error) {
	hdr := &rpm.Header{}
	for _, e := range entries {
		err := hdr.Add(e)
		if err != nil {
			return nil, err
		}
	}
	return hdr.ToBinaryWithRegion(regionTag), nil
}

func buildPackage(lead *rpm.Lead, entries []rpm.Entry, payloadPath string) ([]byte, error) {
	hdr := &rpm.Header{}
	for _, e := range entries {
		err := hdr.Add(e)
		if err != nil {
			return nil, err
		}
	}

	var payload []byte
	if payloadPath != "" {
		var err error
		payload, err = os.ReadFile(payloadPath)
		if err != nil {
			return nil, err
		}
	}
	size, err := uncompressedSize(payload)
	if err != nil {
		return nil, fmt.Errorf("cannot determine size of payload: %w", err)
	}
	log.Debugf("payload has %d bytes (%d bytes uncompressed)", len(payload), size)
	return rpm.AssemblePackage(lead, hdr, payload, size)
}

//uncompressedSize returns the size of the payload after decompression, if
//it is compressed in one of the formats produced by the packer.
func uncompressedSize(payload []byte) (uint32, error) {
	var r io.Reader
	switch {
	case bytes.HasPrefix(payload, []byte("BZh")):
		r = bzip2.NewReader(bytes.NewReader(payload))
	case bytes.HasPrefix(payload, []byte("\xFD7zXZ\x00")):
		xr, err := xz.NewReader(bytes.NewReader(payload))
		if err != nil {
			return 0, err
		}
		r = xr
	default:
		r = bytes.NewReader(payload)
	}
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return 0, err
	}
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("%w: payload is %d bytes long", rpm.ErrOversizedEntry, n)
	}
	return uint32(n), nil
}

////////////////////////////////////////////////////////////////////////////////
// installkit pack

func runPack(env environment, args []string) int {
	fs := newFlagSet("pack")
	var modeName, outputPath string
	var reproducible bool
	fs.StringVarP(&modeName, "mode", "m", "", "")
	fs.StringVarP(&outputPath, "output", "o", "", "")
	fs.BoolVar(&reproducible, "reproducible", false, "")
	if parseFlags(env, "pack", fs, args) != nil {
		return 1
	}

	var ec ErrorCollector
	if modeName == "" {
		ec.Addf("no archive mode given (use --mode)")
	}
	mode, err := packer.ParseMode(modeName)
	if modeName != "" {
		ec.Add(err)
	}
	if outputPath == "" {
		ec.Addf("no output file given (use --output)")
	}
	if ec.Show(env.Stderr) {
		return 1
	}

	inputs := fs.Args()
	seen := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		if seen[input] {
			ShowWarning(env.Stderr, fmt.Sprintf("%s is given more than once and will be archived more than once", input))
		}
		seen[input] = true
	}

	var opts []packer.Option
	if reproducible {
		opts = append(opts, packer.WithModTime(time.Unix(0, 0)))
	}
	log.Debugf("packing %d files into %s (%s)", len(inputs), outputPath, mode.MimeType())
	err = packer.CreateArchive(outputPath, inputs, mode, opts...)
	if err != nil {
		showError(env.Stderr, err)
		if errors.Is(err, packer.ErrIOFailure) {
			return 2
		}
		return 1
	}
	return 0
}
