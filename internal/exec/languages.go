package exec

import "sort"

// Language describes how to materialize and run a snippet. Commands run with
// the temp workspace as the working directory.
type Language struct {
	ID       string
	FileName string
	Command  func(file string) []string
}

var languages = map[string]Language{
	"python": {
		ID:       "python",
		FileName: "main.py",
		Command:  func(file string) []string { return []string{"python3", file} },
	},
	"javascript": {
		ID:       "javascript",
		FileName: "main.js",
		Command:  func(file string) []string { return []string{"node", file} },
	},
	"go": {
		ID:       "go",
		FileName: "main.go",
		Command:  func(file string) []string { return []string{"go", "run", file} },
	},
	"bash": {
		ID:       "bash",
		FileName: "main.sh",
		Command:  func(file string) []string { return []string{"bash", file} },
	},
}

// Languages lists the supported language ids.
func Languages() []string {
	ids := make([]string, 0, len(languages))
	for id := range languages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
