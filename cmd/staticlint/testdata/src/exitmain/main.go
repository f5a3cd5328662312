package main

import (
	"fmt"
	"os"
)

func helper() {
	os.Exit(2)
}

func main() {
	defer fmt.Println("deferred")

	cleanup := func() {
		os.Exit(3)
	}
	_ = cleanup
	helper()

	os.Exit(1) // want "direct call to os.Exit is not allowed in main"
}
