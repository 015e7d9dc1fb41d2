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

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/ogier/pflag"

	"github.com/holocm/installkit/src/installkit/orderedmap"
	"github.com/holocm/installkit/src/installkit/packer"
)

//Version is reported by `installkit --version`.
var Version = "1.0.0"

//environment is where a command reads its input and writes its output.
type environment struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

type command struct {
	Usage   string
	Summary string
	Run     func(env environment, args []string) int
}

//commands is listed in registration order by printHelp.
var commands = orderedmap.New[command]()

func init() {
	commands.Set("tsort", command{
		Usage:   "tsort [--check] [FILE]",
		Summary: "Print the items of a graph definition in topological order",
		Run:     runTsort,
	})
	commands.Set("vercmp", command{
		Usage:   "vercmp VERSION1 VERSION2",
		Summary: "Compare two [EPOCH:]VERSION[-RELEASE] strings like RPM does",
		Run:     runVercmp,
	})
	commands.Set("header", command{
		Usage:   "header [--region=TAG | --lead=NAME-VERSION-RELEASE [--arch=ARCH] [--payload=FILE]] [--output=OUT] [FILE]",
		Summary: "Encode a header definition into an RPM header (or a whole RPM package)",
		Run:     runHeader,
	})
	commands.Set("pack", command{
		Usage:   "pack --mode=MODE [--reproducible] --output=OUT INPUT...",
		Summary: "Bundle files into a compressed archive",
		Run:     runPack,
	})
}

func main() {
	log.SetHandler(cli.Default)
	os.Exit(run(environment{os.Stdin, os.Stdout, os.Stderr}, os.Args[1:]))
}

//run executes the command line (without the program name) and returns the
//exit code: 0 on success, 1 for invalid usage or definitions, 2 when the
//requested operation failed.
func run(env environment, args []string) int {
	fs := pflag.NewFlagSet("installkit", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SetInterspersed(false)
	var showHelp, showVersion, verbose bool
	fs.BoolVarP(&showHelp, "help", "h", false, "")
	fs.BoolVar(&showVersion, "version", false, "")
	fs.BoolVarP(&verbose, "verbose", "v", false, "")

	err := fs.Parse(args)
	if err != nil {
		showError(env.Stderr, err)
		printHelp(env.Stderr)
		return 1
	}
	switch {
	case showHelp:
		printHelp(env.Stdout)
		return 0
	case showVersion:
		fmt.Fprintf(env.Stdout, "installkit %s\n", Version)
		return 0
	}
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	if fs.NArg() == 0 {
		showError(env.Stderr, fmt.Errorf("no command given"))
		printHelp(env.Stderr)
		return 1
	}
	name := fs.Arg(0)
	cmd, err := commands.Lookup(name)
	if err != nil {
		showError(env.Stderr, fmt.Errorf("unknown command %q: %w", name, err))
		printHelp(env.Stderr)
		return 1
	}
	log.Debugf("running command %s", name)
	return cmd.Run(env, fs.Args()[1:])
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: installkit [--verbose] <command> <options>")
	fmt.Fprintln(w, "       installkit --help | --version\n\nCommands:")
	commands.Each(func(_ int, _ string, cmd command) error {
		fmt.Fprintf(w, "  %s\n      %s\n", cmd.Usage, cmd.Summary)
		return nil
	})
	fmt.Fprintln(w, "\nDefinition files are read from standard input if FILE is not given.")
	fmt.Fprintln(w, "Graph definitions list `items = [...]` and `[[edge]]` tables with")
	fmt.Fprintln(w, "`parent` and `child`. Header definitions list `[[entry]]` tables with")
	fmt.Fprintln(w, "`tag`, `type` (e.g. \"STRING_ARRAY\") and `value`.")
	fmt.Fprintln(w, "\nArchive modes:")
	for _, mode := range packer.Modes {
		fmt.Fprintf(w, "  %-12s %s (%s)\n", mode, mode.Extension(), mode.MimeType())
	}
}
