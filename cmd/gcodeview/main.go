// Command gcodeview drives a file or stdin byte-by-byte through a
// gcode.Buffer and prints each decoded command, replacing the teacher's
// cmd/gcview HTML plotting view with a line-oriented dump.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"

	"github.com/kestrelfw/gcode"
	"github.com/kestrelfw/gcode/objmodel"
)

type printingMachine struct {
	logger kitlog.Logger
}

func (m printingMachine) Handle(b *gcode.Buffer) error {
	fmt.Printf("%-8s data=%q\n", b.PrintCommand(), string(b.DataSlice()))
	b.SetFinished()
	return nil
}

func main() {
	capacity := flag.Int("capacity", gcode.DefaultCapacity, "line buffer capacity")
	checksumRequired := flag.Bool("checksum-required", false, "reject lines without a checksum")
	machineType := flag.String("machine-type", "generic", "machine type: generic or cnc")
	flag.Parse()

	mtype := gcode.MachineGeneric
	if *machineType == "cnc" {
		mtype = gcode.MachineCNC
	}

	logger := kitlog.NewLogfmtLogger(os.Stderr)
	resolver := objmodel.New()

	args := flag.Args()
	if len(args) == 0 {
		if err := run(os.Stdin, capacity, checksumRequired, mtype, logger, resolver); err != nil {
			log.Fatal(err)
		}
		return
	}

	fs := afero.NewOsFs()
	for _, name := range args {
		f, err := fs.Open(name)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(name)
		if err := run(f, capacity, checksumRequired, mtype, logger, resolver); err != nil {
			log.Print(err)
		}
		f.Close()
		fmt.Println()
	}
}

func run(r io.Reader, capacity *int, checksumRequired *bool, mtype gcode.MachineType, logger kitlog.Logger, resolver *objmodel.Map) error {
	machineState := gcode.NewMachineState()
	buf := gcode.NewBuffer(machineState,
		gcode.WithCapacity(*capacity),
		gcode.WithChecksumRequired(*checksumRequired),
		gcode.WithMachineType(mtype),
		gcode.WithLogger(logger),
		gcode.WithResolver(resolver),
	)

	exec := printingMachine{logger: logger}

	in := bufio.NewReader(r)
	for {
		c, err := in.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		ready, err := buf.PutByte(c)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if ready {
			// SetFinished leaves the buffer Ready again while further
			// commands remain on a multi-command line.
			for buf.State() == gcode.Ready {
				if err := exec.Handle(buf); err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
				}
			}
		}
	}
}
