package exec

import (
	"errors"
	"fmt"
)

// Language is a closed tag identifying a supported runtime.
type Language string

const (
	LangCPP    Language = "cpp"
	LangPython Language = "python"
	LangJava   Language = "java"
)

// ErrUnsupportedLanguage is returned for any language outside the fixed
// table. No sandbox work is performed in that case.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Pipeline describes how one language is built and run inside its sandbox.
// The command carries the inner 5s timeout bounding the user program.
type Pipeline struct {
	Language Language
	Filename string
	Command  string
	Image    string
}

// StdinFilename is the fixed name of the stdin file inside the workspace.
const StdinFilename = "stdin.txt"

var pipelines = map[Language]Pipeline{
	LangCPP: {
		Language: LangCPP,
		Filename: "code.cpp",
		Command:  "g++ code.cpp -o main && timeout 5s ./main < stdin.txt",
		Image:    "cpp-runner",
	},
	LangPython: {
		Language: LangPython,
		Filename: "code.py",
		Command:  "timeout 5s python3 code.py < stdin.txt",
		Image:    "python-runner",
	},
	LangJava: {
		Language: LangJava,
		Filename: "Main.java",
		Command:  "javac Main.java && timeout 5s java Main < stdin.txt",
		Image:    "java-runner",
	},
}

// ParseLanguage validates a client-supplied language tag.
func ParseLanguage(s string) (Language, error) {
	lang := Language(s)
	if _, ok := pipelines[lang]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
	}
	return lang, nil
}

// PipelineFor returns the pipeline for a language.
func PipelineFor(lang Language) (Pipeline, bool) {
	p, ok := pipelines[lang]
	return p, ok
}

// Languages returns all supported language tags.
func Languages() []Language {
	return []Language{LangCPP, LangPython, LangJava}
}

// RunRequest is a single transient execution request. It is never persisted.
type RunRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Stdin    string `json:"stdin"`
}

// RunResult is the captured output of one execution. Failures are folded
// into Stderr rather than surfaced as errors.
type RunResult struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}
