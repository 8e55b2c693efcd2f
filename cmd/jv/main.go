package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/brightloom/jsonschema"
)

func usage() {
	fmt.Fprintln(os.Stderr, "jv [-draft INT] [-assert-format] [-assert-content] <json-schema> [<json-doc>]...")
	flag.PrintDefaults()
}

func main() {
	draft := flag.Int("draft", 2020, "draft used when '$schema' is missing (4, 6, 7, 2019 or 2020)")
	assertFormat := flag.Bool("assert-format", false, "fail validation on format errors, not just annotate")
	assertContent := flag.Bool("assert-content", false, "fail validation on contentEncoding/contentMediaType/contentSchema errors")
	insecure := flag.Bool("insecure", false, "skip TLS certificate verification for https:// loads")
	cacert := flag.String("cacert", "", "path to a CA bundle for https:// loads")
	var nsFlags stringMap
	flag.Var(&nsFlags, "ns", "map a URL prefix to a local directory, repeatable: -ns https://example.com/schemas/=./testdata")
	flag.Usage = usage
	flag.Parse()
	if len(flag.Args()) == 0 {
		usage()
		os.Exit(1)
	}

	compiler := jsonschema.NewCompiler()
	switch *draft {
	case 4:
		compiler.SetDefaultDraft(jsonschema.Draft4)
	case 6:
		compiler.SetDefaultDraft(jsonschema.Draft6)
	case 7:
		compiler.SetDefaultDraft(jsonschema.Draft7)
	case 2019:
		compiler.SetDefaultDraft(jsonschema.Draft2019)
	case 2020:
		compiler.SetDefaultDraft(jsonschema.Draft2020)
	default:
		fmt.Fprintln(os.Stderr, "draft must be one of 4, 6, 7, 2019, 2020")
		os.Exit(1)
	}
	compiler.AssertFormat(*assertFormat)
	compiler.AssertContent(*assertContent)

	l, err := newLoader(nsFlags.m, *insecure, *cacert)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	compiler.RegisterURLLoader("file", l)
	compiler.RegisterURLLoader("http", l)
	compiler.RegisterURLLoader("https", l)

	schemas, rootIdx, err := compiler.Compile(flag.Arg(0))
	if err != nil {
		color.Red("schema error: %v", err)
		os.Exit(1)
	}

	exitCode := 0
	for _, f := range flag.Args()[1:] {
		doc, err := l.Load(f)
		if err != nil {
			color.Red("error reading %q: %v", f, err)
			exitCode = 1
			continue
		}
		if err := schemas.Validate(doc, rootIdx); err != nil {
			color.Red("%s does not validate", f)
			if ve, ok := err.(*jsonschema.ValidationError); ok {
				printError(ve, 1)
			} else {
				fmt.Fprintln(os.Stderr, err)
			}
			exitCode = 1
			continue
		}
		color.Green("%s: valid", f)
	}
	os.Exit(exitCode)
}

func printError(e *jsonschema.ValidationError, depth int) {
	fmt.Fprintf(os.Stderr, "%sat %q: %s\n", strings.Repeat("  ", depth), e.InstanceLocation, e.Kind)
	for _, cause := range e.Causes {
		printError(cause, depth+1)
	}
}

// stringMap implements flag.Value, accumulating repeated -ns prefix=dir
// flags into a map.
type stringMap struct {
	m map[string]string
}

func (s *stringMap) String() string {
	if s == nil {
		return ""
	}
	return fmt.Sprint(s.m)
}

func (s *stringMap) Set(v string) error {
	prefix, dir, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf("expected prefix=dir, got %q", v)
	}
	if s.m == nil {
		s.m = map[string]string{}
	}
	s.m[prefix] = dir
	return nil
}
