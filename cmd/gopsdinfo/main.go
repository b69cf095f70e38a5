// Command gopsdinfo prints a PSD/PSB document's header and layer tree to
// the terminal, and finds layers by path. Image resources are not printed.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/go-photoshop/gopsd"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gopsdinfo <file.psd|file.psb>",
		Short: "Inspect a Photoshop document's header and layer tree",
	}
	root.AddCommand(newTreeCommand(), newHeaderCommand(), newFindCommand())
	return root
}

func newHeaderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "header <file>",
		Short: "Print the document header and color mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := psd.OpenDocument(args[0], nil)
			if err != nil {
				return err
			}
			h := doc.Header
			fmt.Printf("version:  %s\n", versionName(h.IsBig()))
			fmt.Printf("size:     %dx%d\n", h.Width, h.Height)
			fmt.Printf("depth:    %d bits/channel\n", h.Depth)
			fmt.Printf("channels: %d\n", h.Channels)
			fmt.Printf("mode:     %s\n", h.Mode)
			return nil
		},
	}
}

func newTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <file>",
		Short: "Print the reconstructed layer tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := psd.OpenDocument(args[0], nil)
			if err != nil {
				return err
			}
			printNode(doc.Tree, 0)
			return nil
		},
	}
}

func newFindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "find <file> <path>",
		Short: "Find a layer by its \"/\"-joined path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := psd.OpenDocument(args[0], nil)
			if err != nil {
				return err
			}
			matches := doc.Tree.Find(args[1])
			if len(matches) == 0 {
				return fmt.Errorf("no layer matches path %q", args[1])
			}
			for _, n := range matches {
				printNode(n, 0)
			}
			return nil
		},
	}
}

func versionName(isBig bool) string {
	if isBig {
		return "PSB (large document)"
	}
	return "PSD"
}

var kindColor = map[psd.LayerKind]*color.Color{
	psd.LayerKindGroup:          color.New(color.FgCyan, color.Bold),
	psd.LayerKindArtboard:       color.New(color.FgCyan, color.Bold),
	psd.LayerKindText:           color.New(color.FgGreen),
	psd.LayerKindSmartObject:    color.New(color.FgYellow),
	psd.LayerKindAdjustment:     color.New(color.FgMagenta),
	psd.LayerKindShape:          color.New(color.FgMagenta),
	psd.LayerKindSectionDivider: color.New(color.FgHiBlack),
}

func printNode(n *psd.LayerNode, depth int) {
	indent := strings.Repeat("  ", depth)
	name := n.Name
	if name == "" {
		name = "(root)"
	}
	c, ok := kindColor[n.Kind]
	label := fmt.Sprintf("%s [%s]", name, n.Kind)
	if ok {
		label = c.Sprint(label)
	}
	visibility := ""
	if !n.Visible {
		visibility = " (hidden)"
	}
	fmt.Printf("%s%s%s\n", indent, label, visibility)
	for _, child := range n.Children {
		printNode(child, depth+1)
	}
}
