package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/config"
	"github.com/reoring/docbind/format"
	"github.com/reoring/docbind/internal/log"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "docbind CLI\n\nUsage:\n  docbind convert -from json -to yaml [-in file] [-out file] [-props file]\n  docbind tokens -from json [-in file] [-props file]\n  docbind formats\n\nNotes:\n  - Format properties (json.indent, yaml.flowStyle, ...) are read from -props and DOCBIND_* variables.")
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	var err error
	switch args[0] {
	case "convert":
		err = convertCmd(args[1:], stdin, stdout, stderr)
	case "tokens":
		err = tokensCmd(args[1:], stdin, stdout, stderr)
	case "formats":
		fmt.Fprintln(stdout, strings.Join(format.Names(), "\n"))
	default:
		usage(stderr)
		return 2
	}
	if err == flag.ErrHelp {
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "docbind: %v\n", err)
		return 1
	}
	return 0
}

type common struct {
	in      string
	props   string
	verbose bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.in, "in", "", "input file (default stdin)")
	fs.StringVar(&c.props, "props", "", "properties file (.properties, .yaml or .json)")
	fs.BoolVar(&c.verbose, "v", false, "enable debug logs")
}

func (c *common) setup() (config.Properties, func(), error) {
	restore := func() {}
	if c.verbose {
		l, err := log.Init(log.Config{Level: "debug", Format: "console", Stderr: true, DisableCaller: true})
		if err != nil {
			return nil, restore, err
		}
		restore = log.ReplaceGlobals(l)
	}
	p, err := config.LoadProperties(c.props)
	if err != nil {
		return nil, restore, err
	}
	return p, restore, nil
}

func (c *common) input(stdin io.Reader) (io.ReadCloser, error) {
	if c.in == "" || c.in == "-" {
		return io.NopCloser(stdin), nil
	}
	return os.Open(c.in)
}

// withFormat copies p with the format property replaced.
func withFormat(p config.Properties, name string) config.Properties {
	out := config.Properties{}
	for k, v := range p {
		out[k] = v
	}
	out.Set(format.PropFormat, name)
	return out
}

// convertCmd reads a document in one format and writes it in another by way
// of a yaml.v3 node tree, which keeps key order.
func convertCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	var from, to, out string
	c.register(fs)
	fs.StringVar(&from, "from", "json", "input format")
	fs.StringVar(&to, "to", "yaml", "output format")
	fs.StringVar(&out, "out", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, restore, err := c.setup()
	defer restore()
	if err != nil {
		return err
	}
	src, err := config.New(withFormat(p, from))
	if err != nil {
		return err
	}
	dst, err := config.New(withFormat(p, to))
	if err != nil {
		return err
	}

	in, err := c.input(stdin)
	if err != nil {
		return err
	}
	defer in.Close()
	doc, err := src.Load(docbind.YAMLNode, in)
	if err != nil {
		return err
	}
	if out == "" {
		return dst.Save(docbind.YAMLNode, doc, stdout)
	}
	return dst.SaveFile(docbind.YAMLNode, doc, out)
}

// tokensCmd prints the token stream of a document, one token per line.
func tokensCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tokens", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	var from string
	c.register(fs)
	fs.StringVar(&from, "from", "json", "input format")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, restore, err := c.setup()
	defer restore()
	if err != nil {
		return err
	}
	f, err := format.New(from, withFormat(p, from))
	if err != nil {
		return err
	}
	in, err := c.input(stdin)
	if err != nil {
		return err
	}
	defer in.Close()
	r, err := f.NewReader(in)
	if err != nil {
		return err
	}
	rec := &docbind.TokenRecorder{}
	if err := docbind.CopyValue(rec, r); err != nil {
		return err
	}
	for _, t := range rec.Tokens() {
		fmt.Fprintln(stdout, t.String())
	}
	return nil
}
