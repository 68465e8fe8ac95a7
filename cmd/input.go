package main

import (
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// readInput returns the text to extract from: joined args, the --file path,
// or stdin when neither is given ("-" also means stdin).
func readInput(args []string, path string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", eris.Wrap(err, "read input")
	}
	return string(data), nil
}
