// Package languages holds the table of languages the playground can seed
// and run.
package languages

import (
	"strings"

	"github.com/dcode-ide/apiserver/types"
)

// Unsupported is stored as the starter code of a project whose language is
// not in the table.
const Unsupported = "Language not supported"

// DefaultRunnerID is the Judge0 id used when a language has no mapping (Python 3).
const DefaultRunnerID = 100

var table = []types.Language{
	{
		Key:         "python",
		Extension:   "py",
		StarterCode: `print("Hello World")`,
		RunnerID:    100,
	},
	{
		Key:         "java",
		Extension:   "java",
		StarterCode: `public class Main { public static void main(String[] args) { System.out.println("Hello World"); } }`,
		RunnerID:    91,
	},
	{
		Key:         "javascript",
		Extension:   "js",
		StarterCode: `console.log("Hello World");`,
		RunnerID:    102,
	},
	{
		Key:         "cpp",
		Extension:   "cpp",
		StarterCode: "#include <iostream>\n\nint main() {\n    std::cout << \"Hello World\" << std::endl;\n    return 0;\n}",
		RunnerID:    105,
	},
	{
		Key:         "c",
		Extension:   "c",
		StarterCode: "#include <stdio.h>\n\nint main() {\n    printf(\"Hello World\\n\");\n    return 0;\n}",
		RunnerID:    103,
	},
	{
		Key:         "go",
		Extension:   "go",
		StarterCode: "package main\n\nimport \"fmt\"\n\nfunc main() {\n    fmt.Println(\"Hello World\")\n}",
		RunnerID:    107,
	},
	{
		Key:         "bash",
		Extension:   "sh",
		StarterCode: `echo "Hello World"`,
		RunnerID:    46,
	},
}

var byKey = func() map[string]types.Language {
	m := make(map[string]types.Language, len(table))
	for _, lang := range table {
		m[lang.Key] = lang
	}
	return m
}()

// All returns the supported languages in display order.
func All() []types.Language {
	out := make([]types.Language, len(table))
	copy(out, table)
	return out
}

// Lookup finds a language by key, ignoring case and surrounding space.
func Lookup(key string) (types.Language, bool) {
	lang, ok := byKey[strings.ToLower(strings.TrimSpace(key))]
	return lang, ok
}

// StarterCode returns the template a new project in key starts with.
func StarterCode(key string) string {
	if lang, ok := Lookup(key); ok {
		return lang.StarterCode
	}
	return Unsupported
}

// RunnerID returns the Judge0 language id for key.
func RunnerID(key string) int {
	if lang, ok := Lookup(key); ok {
		return lang.RunnerID
	}
	return DefaultRunnerID
}

// Extension returns the source file extension for key, "txt" when unknown.
func Extension(key string) string {
	if lang, ok := Lookup(key); ok {
		return lang.Extension
	}
	return "txt"
}
