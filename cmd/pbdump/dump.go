package main

import (
	"fmt"
	"os"

	"github.com/lakeman/pbdump/internal/binreader"
	"github.com/lakeman/pbdump/internal/classgroup"
	"github.com/lakeman/pbdump/internal/library"
	"github.com/lakeman/pbdump/internal/opcode"
	"github.com/lakeman/pbdump/internal/printer"
)

// enumerate lists every entry name in the library, spec.md §6.4 form 1.
func enumerate(path string) error {
	lib, err := library.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer lib.Close()

	return lib.Enumerate(func(e library.Entry) error {
		fmt.Println(e.String())
		return nil
	})
}

// decodeOne decodes and prints a single named entry, spec.md §6.4 form 2.
func decodeOne(path, name string) error {
	lib, err := library.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer lib.Close()

	entry, err := lib.Find(name)
	if err != nil {
		return fmt.Errorf("find %s: %w", name, err)
	}
	return decodeEntry(lib, entry)
}

// decodeAll decodes and prints every entry, the --all batch extension.
func decodeAll(path string) error {
	lib, err := library.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer lib.Close()

	logger := newLogger()
	return lib.Enumerate(func(e library.Entry) error {
		if err := decodeEntry(lib, e); err != nil {
			logger.Warnf("skipping %s: %v", e.Name, err)
		}
		return nil
	})
}

func decodeEntry(lib *library.Library, entry library.Entry) error {
	raw, err := lib.Read(entry)
	if err != nil {
		return fmt.Errorf("read %s: %w", entry.Name, err)
	}

	logger := newLogger()
	r := binreader.New(raw)
	grp, err := classgroup.Decode(r, classgroup.Options{
		IncludeGenerated: flagDebug,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("decode %s: %w", entry.Name, err)
	}
	for _, a := range grp.Anomalies {
		logger.Warnf("%s: %s", entry.Name, a)
	}

	table := opcode.ForVersion(int(grp.Header.CompilerVersion))
	p := printer.New(printer.Options{
		IncludeGenerated: flagDebug,
		Logger:           logger,
	}, &printer.ScriptResolver{Group: grp, Version: int(grp.Header.CompilerVersion)})

	fmt.Fprint(os.Stdout, p.PrintGroup(entry.Name, grp, table))
	return nil
}
