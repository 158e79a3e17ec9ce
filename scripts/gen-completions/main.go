// Command gen-completions writes drill's shell completion scripts into a
// directory so release archives can ship them.
//
// Usage:
//
//	go run ./scripts/gen-completions [output-dir]
//
// The default output directory is "completions".
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/codedrill/internal/cli"
)

type script struct {
	name     string
	generate func(root *cobra.Command, w io.Writer) error
}

var scripts = []script{
	{"drill.bash", func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) }},
	{"_drill", func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) }},
	{"drill.fish", func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) }},
	{"drill.ps1", func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) }},
}

func main() {
	outDir := "completions"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	if err := run(outDir); err != nil {
		fmt.Fprintln(os.Stderr, "gen-completions:", err)
		os.Exit(1)
	}
	fmt.Printf("All completions written to %s/\n", outDir)
}

func run(outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %q: %w", outDir, err)
	}
	root := cli.NewRootCmd()
	for _, s := range scripts {
		path := filepath.Join(outDir, s.name)
		if err := writeScript(root, path, s.generate); err != nil {
			return err
		}
		fmt.Printf("Generated %s\n", path)
	}
	return nil
}

func writeScript(root *cobra.Command, path string, generate func(*cobra.Command, io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}
	if err := generate(root, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("generating %q: %w", path, err)
	}
	return f.Close()
}
