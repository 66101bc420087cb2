// 3gmdump reads one or more .3GM model files and prints a one-line
// summary of each. Argument parsing, file I/O, and logging are the
// driver's job, not the decoder's; it does not produce OBJ/MTL output,
// which stays outside the decoder core.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/intuitionamiga/model3gm/model"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: 3gmdump file.3gm [file2.3gm ...]\n\nDecodes each file and prints a one-line summary.\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	paths := flag.Args()
	summaries := make([]string, len(paths))
	errs := make([]error, len(paths))

	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if interactive {
				fmt.Fprintf(os.Stderr, "\rdecoding %s...", path)
			}
			summary, err := describe(path)
			summaries[i] = summary
			errs[i] = err
			return nil // collect all results; don't let one failure cancel the rest
		})
	}
	_ = g.Wait()

	failed := false
	for i, path := range paths {
		if errs[i] != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, errs[i])
			failed = true
			continue
		}
		fmt.Println(summaries[i])
	}
	if failed {
		os.Exit(1)
	}
}

func describe(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	shape, err := model.Decode(data)
	if err != nil {
		return "", err
	}
	anim := "no animation"
	if shape.Animation != nil {
		anim = fmt.Sprintf("%d property frame(s), %d position frame(s)",
			len(shape.Animation.Properties), len(shape.Animation.Positions))
	}
	return fmt.Sprintf("%s: %d vertices, %d primitive indices, %d surfaces, %s",
		path, shape.VertexCount, len(shape.PrimitiveBuffer), len(shape.Surfaces), anim), nil
}
