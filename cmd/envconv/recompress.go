package main

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"deferred-gl/ibl"
	"deferred-gl/liblog"
)

func createRecompressCommand() *command {
	args := commonArgs{
		ext:      ".iblenv",
		suffix:   "_recompressed",
		compress: 2,
	}

	flags := flag.NewFlagSet("recompress", flag.ExitOnError)

	registerCommonFlags(flags, &args)

	return &command{
		Name: "recompress",
		Help: "rewrite ibl environment files with another compression level",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 || args.compress < 0 || args.compress > 10 {
				printCommandUsage(self, " file-glob...")
			}
			setCommonArgs(&args)

			runRecompress(args, gatherInputFiles(self.Flags.Args()))
		},
		Flags: flags,
	}
}

func runRecompress(args commonArgs, inputFiles []string) {
	success := 0
	start := time.Now()
	for i, p := range inputFiles {
		liblog.Infof("Processing file %d/%d %q ...", i+1, len(inputFiles), filepath.ToSlash(filepath.Clean(p)))
		err := recompressFile(args, p)
		softerr(err)
		if err == nil {
			success++
		}
	}
	took := float32(time.Since(start).Milliseconds()) / 1000
	liblog.Infof("Recompressed %d/%d files in %.3f seconds", success, len(inputFiles), took)
}

func recompressFile(args commonArgs, p string) error {
	env, err := ibl.LoadIblEnv(p)
	if err != nil {
		return err
	}

	outFilename := outputPath(p)
	if err := ibl.SaveIblEnv(outFilename, env, ibl.OptCompress(args.compress-1)); err != nil {
		os.Remove(outFilename)
		return err
	}
	return nil
}
