package occ

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const symfonyStderr = `
                                        
  [InvalidArgumentException]            
  The "--foo" option does not exist.    
                                        

config:list [--private] [--output [OUTPUT]] [--] [<app>]
`

func TestResult_Exceptions(t *testing.T) {
	r := Result{Stderr: symfonyStderr, ExitCode: 1}
	assert.Equal(t, []string{`The "--foo" option does not exist.`}, r.Exceptions())

	two := Result{Stderr: "[Exception]\nfirst\nnoise\n  [OC\\HintException]  \nsecond\n"}
	assert.Equal(t, []string{"first", "second"}, two.Exceptions())

	assert.Empty(t, Result{Stderr: "Warning: something odd\n"}.Exceptions())
	assert.Empty(t, Result{}.Exceptions())
}

func TestResult_Output(t *testing.T) {
	r := Result{Stdout: "out", Stderr: "err"}
	assert.Equal(t, "out", r.Output(Stdout))
	assert.Equal(t, "err", r.Output(Stderr))
	assert.Equal(t, "stderr", Stderr.String())
}

func TestFindLines(t *testing.T) {
	text := "  - apps:\n    - core: 10.2\n  - system:\n    - core: yes\n"
	assert.Equal(t, []string{"    - core: 10.2", "    - core: yes"}, FindLines(text, "core"))
	assert.Empty(t, FindLines(text, "dav"))
}
