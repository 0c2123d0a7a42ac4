// Command kdlt expands, checks and exports template documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	kdlt "github.com/reoring/kdlt"
	"github.com/reoring/kdlt/codec"
	"github.com/reoring/kdlt/diag"
	"github.com/reoring/kdlt/i18n"
	"github.com/reoring/kdlt/template"
)

type cli struct {
	Lang     string `help:"Diagnostics language." enum:"en,ja" default:"en" env:"KDLT_LANG"`
	NoColor  bool   `help:"Disable styled diagnostics." env:"NO_COLOR"`
	MaxDepth int    `help:"Template expansion and build depth cap (0 selects the default)." default:"0"`

	Expand expandCmd `cmd:"" help:"Parse and expand a document, print the materialized result."`
	Check  checkCmd  `cmd:"" help:"Report every diagnostic in the given documents."`
	Export exportCmd `cmd:"" help:"Print the expanded document as JSON or YAML."`
	Watch  watchCmd  `cmd:"" help:"Re-check a document every time it changes."`
}

// errDiagnostics flags a run that printed its findings already; main
// converts it into the exit status without an extra message.
var errDiagnostics = errors.New("diagnostics reported")

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("kdlt"),
		kong.Description("Template-expanding document processor."),
		kong.UsageOnError(),
	)
	i18n.SetLanguage(c.Lang)
	if err := kctx.Run(&c); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(os.Stderr, "kdlt: "+err.Error())
		}
		os.Exit(1)
	}
}

func (c *cli) readOpt() template.ReadOpt {
	return template.ReadOpt{MaxDepth: c.MaxDepth}
}

// report renders issues against their source to stderr, prefixed by the
// file they came from.
func (c *cli) report(path string, src []byte, iss kdlt.Issues) {
	if len(iss) == 0 {
		return
	}
	r := diag.NewRenderer(diag.Options{Color: !c.NoColor})
	fmt.Fprintf(os.Stderr, "%s: %d issue(s)\n", path, len(iss))
	fmt.Fprint(os.Stderr, r.Render(src, iss))
}

type expandCmd struct {
	File string `arg:"" help:"Document to expand." type:"existingfile"`
}

func (e *expandCmd) Run(root *cli) error {
	src, err := os.ReadFile(e.File)
	if err != nil {
		return err
	}
	res := template.Expand(context.Background(), src, root.readOpt())
	root.report(e.File, src, res.Issues())
	if !res.HasValue() {
		return errDiagnostics
	}
	n := res.Value()
	fmt.Println(n.String())
	if len(res.Issues()) > 0 {
		return errDiagnostics
	}
	return nil
}

type checkCmd struct {
	Files []string `arg:"" help:"Documents to check." type:"existingfile"`
}

func (e *checkCmd) Run(root *cli) error {
	bad := false
	for _, path := range e.Files {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		res := template.Expand(context.Background(), src, root.readOpt())
		if iss := res.Issues(); len(iss) > 0 {
			root.report(path, src, iss)
			bad = true
		}
	}
	if bad {
		return errDiagnostics
	}
	return nil
}

type exportCmd struct {
	File   string `arg:"" help:"Document to export." type:"existingfile"`
	Format string `help:"Output encoding." enum:"json,yaml" default:"json"`
}

func (e *exportCmd) Run(root *cli) error {
	src, err := os.ReadFile(e.File)
	if err != nil {
		return err
	}
	res := template.Expand(context.Background(), src, root.readOpt())
	root.report(e.File, src, res.Issues())
	if !res.HasValue() {
		return errDiagnostics
	}
	n := res.Value()
	var out []byte
	switch e.Format {
	case "yaml":
		out, err = codec.NodeYAML(&n)
	default:
		out, err = codec.NodeJSONIndent(&n, "", "  ")
	}
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	if len(res.Issues()) > 0 {
		return errDiagnostics
	}
	return nil
}

type watchCmd struct {
	File string `arg:"" help:"Document to re-check on change." type:"existingfile"`
}

func (e *watchCmd) Run(root *cli) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// watch the directory: editors replace files, which drops a watch
	// held on the file itself
	if err := w.Add(filepath.Dir(e.File)); err != nil {
		return err
	}
	target, err := filepath.Abs(e.File)
	if err != nil {
		return err
	}

	check := func() {
		src, err := os.ReadFile(e.File)
		if err != nil {
			fmt.Fprintln(os.Stderr, "kdlt: "+err.Error())
			return
		}
		res := template.Expand(context.Background(), src, root.readOpt())
		if iss := res.Issues(); len(iss) > 0 {
			root.report(e.File, src, iss)
			return
		}
		fmt.Fprintf(os.Stderr, "%s: ok\n", e.File)
	}
	check()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil || name != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			check()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "kdlt: "+err.Error())
		}
	}
}
