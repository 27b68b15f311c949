package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestRunScriptEvalSucceeds(t *testing.T) {
	oldEval, oldMaxOps := evalExpr, maxOps
	defer func() { evalExpr, maxOps = oldEval, oldMaxOps }()

	evalExpr = `let x = 1 + 2; x`
	maxOps = 0

	captureStdout(t, func() {
		if err := runScript(runCmd, nil); err != nil {
			t.Fatalf("runScript returned error: %v", err)
		}
	})
}

func TestRunScriptRequiresInput(t *testing.T) {
	oldEval := evalExpr
	defer func() { evalExpr = oldEval }()
	evalExpr = ""

	if _, _, err := readSource("", nil); err == nil {
		t.Fatal("expected an error when neither -e nor a file is given")
	}
}

func TestReadSourceFromEval(t *testing.T) {
	input, filename, err := readSource("1 + 1", nil)
	if err != nil {
		t.Fatalf("readSource: %v", err)
	}
	if input != "1 + 1" || filename != "<eval>" {
		t.Fatalf("got (%q, %q)", input, filename)
	}
}

func TestRunScriptReportsParseError(t *testing.T) {
	oldEval := evalExpr
	defer func() { evalExpr = oldEval }()
	evalExpr = "let = ;"

	err := runScript(runCmd, nil)
	if err == nil {
		t.Fatal("expected a parse error to be reported")
	}
	if !strings.Contains(err.Error(), "failed") {
		t.Fatalf("unexpected error: %v", err)
	}
}
