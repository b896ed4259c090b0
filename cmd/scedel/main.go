// Command scedel validates a JSON document against a schema document on
// the command line. It is thin plumbing over the scedel package: building
// the schema repository (internal/schemaio), reading the JSON input, and
// reporting the resulting []scedel.Error — it holds no validation logic of
// its own, matching the teacher's CLI-less core (see cmd/schemagen in the
// retrieval pack for the flag/log conventions this mirrors).
//
// Usage:
//
//	scedel [-type RootType] <json-or-path> <schema-path>
//
// Exit codes:
//
//	0  the document is valid
//	1  the document failed one or more validations
//	2  usage error or failure to load the JSON/schema inputs
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"

	scedel "github.com/scedel-lang/scedel-go"
	"github.com/scedel-lang/scedel-go/internal/schemaio"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("scedel", flag.ContinueOnError)
	rootType := fs.String("type", "", "root type name to validate against (default: infer)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: scedel [-type RootType] <json-or-path> <schema-path>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}
	jsonArg, schemaPath := fs.Arg(0), fs.Arg(1)

	repo := scedel.NewBuiltinRepository()
	schemaDoc, err := os.ReadFile(schemaPath)
	if err != nil {
		log.Println(errors.Wrapf(err, "read schema %q", schemaPath))
		return 2
	}
	if err := schemaio.LoadRepository(schemaDoc, repo); err != nil {
		log.Println(errors.Wrapf(err, "load schema %q", schemaPath))
		return 2
	}

	input, err := readJSONArg(jsonArg)
	if err != nil {
		log.Println(errors.Wrap(err, "read JSON input"))
		return 2
	}

	errs := scedel.Validate(input, repo, *rootType)
	for _, e := range errs {
		fmt.Printf("%s: [%s/%s] %s\n", e.Path, e.Category, e.Code, e.Message)
	}
	if len(errs) > 0 {
		return 1
	}
	return 0
}

// readJSONArg treats arg as a file path when such a file exists, and as an
// inline JSON literal otherwise.
func readJSONArg(arg string) (string, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", errors.Wrapf(err, "read %q", arg)
		}
		return string(data), nil
	}
	return arg, nil
}
