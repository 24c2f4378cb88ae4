// Command build runs the repository chores: go run ./build <task>.
package main

import (
	"os"
	"os/exec"

	"github.com/goyek/goyek/v2"
)

func gocmd(a *goyek.A, args ...string) {
	a.Helper()
	a.Logf("go %v", args)
	cmd := exec.CommandContext(a.Context(), "go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		a.Error(err)
	}
}

var vet = goyek.Define(goyek.Task{
	Name:  "vet",
	Usage: "Run go vet on all packages",
	Action: func(a *goyek.A) {
		gocmd(a, "vet", "./...")
	},
})

var test = goyek.Define(goyek.Task{
	Name:  "test",
	Usage: "Run the unit tests",
	Action: func(a *goyek.A) {
		gocmd(a, "test", "-race", "./...")
	},
})

var e2e = goyek.Define(goyek.Task{
	Name:  "e2e",
	Usage: "Run the end-to-end scripts against a fresh binary",
	Action: func(a *goyek.A) {
		gocmd(a, "test", "-tags=e2e", "./e2e/...")
	},
})

var _ = goyek.Define(goyek.Task{
	Name:  "all",
	Usage: "Run every check",
	Deps:  goyek.Deps{vet, test, e2e},
})

func main() {
	goyek.Main(os.Args[1:])
}
