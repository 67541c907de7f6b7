// Command objectschema validates YAML or JSON documents against schemas
// declared in a schema file.
//
//	objectschema validate --schema library.yaml user.json
//	objectschema schema --schema library.yaml --root user
//
// Exit status is 0 for a valid document, 1 for an invalid one and 2 for
// any other failure.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

// errInvalid is returned by validate when the document has messages.
var errInvalid = errors.New("document is invalid")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errInvalid) {
			return 1
		}
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}
	return 0
}
