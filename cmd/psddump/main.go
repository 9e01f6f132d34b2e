// Command psddump opens a PSD/PSB file and prints its header, image
// resources, and layer tree — a smoke tool for eyeballing what the
// library decoded, not a supported output format.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mark24code/gopsd"
)

func main() {
	verbose := flag.Bool("v", false, "enable trace logging")
	flag.Parse()
	psd.Verbose = *verbose

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: psddump [-v] file.psd")
		os.Exit(2)
	}

	err := psd.Open(flag.Arg(0), func(p *psd.PSD) error {
		printHeader(&p.Header)
		printResources(&p.Resources)
		fmt.Println("layers:")
		printTree(p.Tree(), 1)
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "psddump:", err)
		os.Exit(1)
	}
}

func printHeader(h *psd.Header) {
	fmt.Printf("version=%d channels=%d size=%dx%d depth=%d mode=%s\n",
		h.Version, h.Channels, h.Width(), h.Height(), h.Depth, h.ModeName())
}

func printResources(r *psd.ImageResources) {
	fmt.Printf("resources: %d block(s)\n", len(r.Resources))
}

func printTree(nodes []psd.LayerNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		switch v := n.(type) {
		case *psd.Group:
			fmt.Printf("%s%s/ (%s)\n", indent, v.Name, v.BlendMode.Name())
			printTree(v.Layers, depth+1)
		case *psd.Image:
			fmt.Printf("%s%s %dx%d (%s)\n", indent, v.Name, v.Width(), v.Height(), v.BlendMode.Name())
		}
	}
}
