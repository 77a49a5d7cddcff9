package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"

	"deferred-gl/ibl"
)

var compressionNames = map[ibl.IblEnvCompression]string{
	ibl.IblEnvCompressionNone:    "none",
	ibl.IblEnvCompressionLZ4Fast: "lz4 fast",
	ibl.IblEnvCompressionLZ4:     "lz4",
}

func createInfoCommand() *command {
	flags := flag.NewFlagSet("info", flag.ExitOnError)

	return &command{
		Name: "info",
		Help: "print the header of ibl environment files",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 {
				printCommandUsage(self, " file-glob...")
			}
			for _, p := range gatherInputFiles(self.Flags.Args()) {
				softerr(printInfo(p))
			}
		},
		Flags: flags,
	}
}

func printInfo(p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer close(f)

	var header ibl.IblEnvHeader
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("%q: %w", p, err)
	}
	if header.Check != ibl.MagicNumberIBLENV {
		return fmt.Errorf("%q is not an ibl environment", p)
	}
	stat, err := f.Stat()
	if err != nil {
		return err
	}

	fmt.Printf("%s\n  version:     %d\n  faces:       6 x %dx%d\n  compression: %s\n  file size:   %d bytes\n",
		p, header.Version, header.Size, header.Size, compressionNames[header.Compression], stat.Size())
	return nil
}
