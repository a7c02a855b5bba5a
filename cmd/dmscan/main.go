package main

import (
	"github.com/scanforge/dmscan/cmd/dmscan/cmd"
)

func main() {
	cmd.Execute()
}
