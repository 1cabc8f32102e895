// Command stratadash runs the analytics server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/stratadash/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		fmt.Fprintln(os.Stderr, "stratadash:", err)
		os.Exit(1)
	}
}
