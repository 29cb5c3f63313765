package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jessevdk/go-flags"
	"github.com/lestrrat-go/strictxml"
)

type cmdopts struct {
	Format  bool `long:"format"`
	Quiet   bool `long:"quiet" short:"q"`
	Chunk   int  `long:"chunk" default:"4096"`
	Version bool `long:"version"`
}

func main() {
	os.Exit(_main())
}

func showVersion() {
	fmt.Printf("strictxml-lint: using strictxml version %s\n", strictxml.Version)
}

func showUsage() {
	fmt.Printf(`Usage : strictxml-lint [options] XMLfiles ...
	Parse the XML files and print the resulting event stream
	--format  : print reconstructed markup instead of the event listing
	--quiet   : only check well-formedness, print nothing on success
	--chunk=N : feed the parser N bytes at a time (default 4096)
	--version : display the version of the XML library used
`)
}

func _main() int {
	opts := cmdopts{}
	args, err := flags.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		showUsage()
		return 1
	}

	if opts.Version {
		showVersion()
		return 0
	}
	if opts.Chunk < 1 {
		opts.Chunk = 1
	}

	type input struct {
		name string
		rdr  io.Reader
	}
	inputCh := make(chan input)
	errCh := make(chan error, 1)
	switch {
	case len(args) > 0: // filename present
		go func() {
			defer close(inputCh)
			for _, f := range args {
				fh, err := os.Open(f)
				if err != nil {
					errCh <- err
					return
				}
				inputCh <- input{name: f, rdr: fh}
			}
		}()
	case !isTty(os.Stdin):
		go func() {
			defer close(inputCh)
			inputCh <- input{name: "stdin", rdr: os.Stdin}
		}()
	default:
		showUsage()
		return 1
	}

	status := 0
	for in := range inputCh {
		if err := lint(in.rdr, &opts); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", in.name, err)
			status = 1
		}
		if c, ok := in.rdr.(io.Closer); ok {
			c.Close()
		}
	}

	select {
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	default:
	}

	return status
}

func isTty(f *os.File) bool {
	st, err := f.Stat()
	if err != nil {
		return false
	}
	return st.Mode()&os.ModeCharDevice != 0
}

// lint feeds the input through a fresh parser in fixed-size chunks,
// printing each event as it becomes available.
func lint(src io.Reader, opts *cmdopts) error {
	p := strictxml.New()
	d := strictxml.Dumper{}
	emit := func(ev strictxml.Event) error {
		switch {
		case opts.Quiet:
			return nil
		case opts.Format:
			return d.DumpEvent(os.Stdout, ev)
		default:
			printEvent(ev)
			return nil
		}
	}

	buf := make([]byte, opts.Chunk)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if err := p.Feed(buf[:n]); err != nil {
				return err
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
		if _, err := p.DrainEvents(emit); err != nil {
			return err
		}
	}

	p.FeedEOF()
	done, err := p.DrainEvents(emit)
	if err != nil {
		return err
	}
	if !done {
		return fmt.Errorf("parser did not reach end of document")
	}
	if opts.Format && !opts.Quiet {
		fmt.Println()
	}
	return nil
}

func printEvent(ev strictxml.Event) {
	switch ev := ev.(type) {
	case *strictxml.XMLDecl:
		fmt.Printf("decl version=%q", ev.Version)
		if ev.Encoding != "" {
			fmt.Printf(" encoding=%q", ev.Encoding)
		}
		if ev.Standalone != strictxml.StandaloneNone {
			fmt.Printf(" standalone=%q", ev.Standalone.String())
		}
		fmt.Println()
	case *strictxml.StartElement:
		fmt.Printf("start %s", formatName(ev.Name))
		for _, attr := range ev.Attr {
			fmt.Printf(" %s=%s", formatName(attr.Name), strconv.Quote(string(attr.Value)))
		}
		fmt.Println()
	case *strictxml.EndElement:
		fmt.Printf("end %s\n", formatName(ev.Name))
	case *strictxml.Text:
		fmt.Printf("text %s\n", strconv.Quote(string(ev.Data)))
	case *strictxml.EndOfDocument:
		fmt.Println("eod")
	}
}

func formatName(n strictxml.QName) string {
	if n.URI != "" {
		return fmt.Sprintf("{%s}%s", n.URI, n.Local)
	}
	return string(n.Local)
}
