package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"zephyr-upload/internal/command"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "zephyr-upload panic: %v\n%s", err, debug.Stack())
			code = command.ExitRecordFailures
		}
	}()

	return command.Execute()
}
