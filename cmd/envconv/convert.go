package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"deferred-gl/ibl"
	"deferred-gl/liblog"
)

type convertArgs struct {
	commonArgs
	size size
}

func createConvertCommand() *command {
	args := convertArgs{
		commonArgs: commonArgs{
			ext:      ".iblenv",
			compress: 2,
		},
		size: size{
			unit:    unitPercent,
			percent: 25,
		},
	}

	flags := flag.NewFlagSet("convert", flag.ExitOnError)

	registerCommonFlags(flags, &args.commonArgs)
	flags.Var(&args.size, "size", "the cubemap face resolution, either % of the input width or absolute px")
	flags.Var(&args.size, "s", "shorthand for size")

	return &command{
		Name: "convert",
		Help: "project equirectangular panoramas to ibl environments",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 || args.compress < 0 || args.compress > 10 {
				printCommandUsage(self, " file-glob...")
			}
			setCommonArgs(&args.commonArgs)

			runConvert(args, gatherInputFiles(self.Flags.Args()))
		},
		Flags: flags,
	}
}

func runConvert(args convertArgs, inputFiles []string) {
	success := 0
	start := time.Now()
	for i, p := range inputFiles {
		liblog.Infof("Processing file %d/%d %q ...", i+1, len(inputFiles), filepath.ToSlash(filepath.Clean(p)))
		err := convertFile(args, p)
		softerr(err)
		if err == nil {
			success++
		}
	}
	took := float32(time.Since(start).Milliseconds()) / 1000
	liblog.Infof("Converted %d/%d files in %.3f seconds", success, len(inputFiles), took)
}

func convertFile(args convertArgs, p string) error {
	pano, err := ibl.LoadPanorama(p)
	if err != nil {
		return err
	}

	size := args.size.Calc(pano.Width)
	if size == 0 {
		return fmt.Errorf("%v of %d pixels leaves no face", &args.size, pano.Width)
	}
	liblog.Infof("Projecting to %dx%d cubemap ...", size, size)
	env := ibl.Project(pano, size)

	outFilename := outputPath(p)
	liblog.Infof("Writing %q ...", filepath.ToSlash(filepath.Clean(outFilename)))
	if err := ibl.SaveIblEnv(outFilename, env, ibl.OptCompress(args.compress-1)); err != nil {
		os.Remove(outFilename)
		return err
	}
	return nil
}
