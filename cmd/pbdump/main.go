// Command pbdump decodes PowerBuilder .PBL/.PBD library entries back into
// PowerScript-looking source text, grounded on original_source/main.c's
// top-level orchestration (lib_open -> lib_find/lib_enumerate ->
// class_parse -> write_group -> class_free -> lib_close) and the
// teacher's cmd/pedumper.go Cobra structure.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
