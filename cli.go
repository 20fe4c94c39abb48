//go:build cli
// +build cli

package main

import (
	_ "bizdash/custom"

	"bizdash/cmd"
	"bizdash/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
