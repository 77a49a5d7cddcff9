package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"deferred-gl/liblog"

	"golang.org/x/exp/slices"
)

type sizeUnit string

const (
	unitPixel   = "px"
	unitPercent = "%"
)

// size is either a pixel count or a percentage of the panorama width.
type size struct {
	unit    sizeUnit
	pixel   int32
	percent float64
}

func (sz *size) String() string {
	switch sz.unit {
	case unitPercent:
		return fmt.Sprintf("%s%%", strconv.FormatFloat(sz.percent, 'f', -1, 64))
	case unitPixel:
		return fmt.Sprintf("%dpx", sz.pixel)
	default:
		return ""
	}
}

func (sz *size) Set(s string) error {
	s = strings.TrimSpace(s)
	var err error
	var px int64
	switch {
	case strings.HasSuffix(s, unitPercent):
		sz.unit = unitPercent
		sz.percent, err = strconv.ParseFloat(strings.TrimSuffix(s, unitPercent), 64)
	case strings.HasSuffix(s, unitPixel):
		sz.unit = unitPixel
		px, err = strconv.ParseInt(strings.TrimSuffix(s, unitPixel), 10, 32)
		sz.pixel = int32(px)
	default:
		return fmt.Errorf("%q needs a px or %% suffix", s)
	}
	return err
}

// Calc rounds down to a power of two so the face has a complete mip chain.
func (sz *size) Calc(width int) int {
	var px int
	switch sz.unit {
	case unitPercent:
		px = int(math.Round(sz.percent / 100 * float64(width)))
	case unitPixel:
		px = int(sz.pixel)
	}
	if px < 1 {
		return 0
	}
	pot := 1
	for pot*2 <= px {
		pot *= 2
	}
	return pot
}

type commonArgs struct {
	compress int
	out      string
	quiet    bool
	supress  bool
	ext      string
	suffix   string
}

var cargs *commonArgs

type command struct {
	Run   func(self *command)
	Name  string
	Help  string
	Flags *flag.FlagSet
}

var commands = []*command{}

func printGeneralUsage() {
	exe := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [arguments]\n\n", exe)
	fmt.Fprintf(os.Stderr, "The commands are:\n\n")
	longest := slices.MaxFunc(commands, func(a, b *command) int {
		return len(a.Name) - len(b.Name)
	})
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "    %*s%s\n", -len(longest.Name)-4, c.Name, c.Help)
	}
	fmt.Fprintln(os.Stderr, "")
	os.Exit(1)
}

func printCommandUsage(cmd *command, suffix string) {
	exe := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s %s [arguments]%s\n\n", exe, cmd.Name, suffix)
	fmt.Fprintf(os.Stderr, "The arguments are:\n\n")
	cmd.Flags.SetOutput(os.Stderr)
	cmd.Flags.PrintDefaults()
	os.Exit(1)
}

func main() {
	commands = append(commands, createConvertCommand())
	commands = append(commands, createRecompressCommand())
	commands = append(commands, createInfoCommand())

	slices.SortFunc(commands, func(a, b *command) int {
		return strings.Compare(a.Name, b.Name)
	})

	if len(os.Args) < 2 {
		printGeneralUsage()
	}

	idx := slices.IndexFunc(commands, func(c *command) bool {
		return strings.EqualFold(c.Name, os.Args[1])
	})
	if idx < 0 {
		printGeneralUsage()
	}
	cmd := commands[idx]

	err := cmd.Flags.Parse(os.Args[2:])
	harderr(err)

	cmd.Run(cmd)
}

func registerCommonFlags(flags *flag.FlagSet, args *commonArgs) {
	flags.IntVar(&args.compress, "compress", args.compress, "the compression level from 0 (none) to 10 (high)")
	flags.IntVar(&args.compress, "c", args.compress, "shorthand for compress")
	flags.StringVar(&args.out, "out", args.out, "the output directory")
	flags.StringVar(&args.out, "o", args.out, "shorthand for out")
	flags.BoolVar(&args.quiet, "quiet", args.quiet, "disables informational logging")
	flags.BoolVar(&args.quiet, "q", args.quiet, "shorthand for quiet")
	flags.BoolVar(&args.supress, "supress", args.supress, "disables soft error logging")
	flags.StringVar(&args.ext, "ext", args.ext, "the result file extension")
	flags.StringVar(&args.suffix, "suffix", args.suffix, "the result file suffix")
}

func setCommonArgs(args *commonArgs) {
	cargs = args
	if args.quiet {
		_ = liblog.SetLevel("warn")
	}
	if args.out == "" {
		var err error
		args.out, err = os.Getwd()
		harderr(err)
	}

	_, err := os.Stat(args.out)
	if err != nil {
		harderr(fmt.Errorf("cannot stat output directory: %w", err))
	}
}

func gatherInputFiles(globs []string) []string {
	matched := []string{}
	for _, g := range globs {
		m, err := filepath.Glob(g)
		softerr(err)
		matched = append(matched, m...)
	}
	return slices.Compact(matched)
}

func outputPath(input string) string {
	return filepath.Join(cargs.out, strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))+cargs.suffix+cargs.ext)
}

func close(closer io.Closer) {
	closer.Close()
}

func softerr(err error) bool {
	if err != nil && (cargs == nil || !cargs.supress) {
		liblog.Errorf("%v", err)
		return true
	}
	return false
}

func harderr(err error) {
	if err != nil {
		liblog.Fatalf("%v", err)
	}
}
