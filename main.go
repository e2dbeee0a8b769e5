// Package main is the entry point for faceitwatch, which announces finished
// FACEIT CS2 matches of a tracked roster in a Telegram chat.
package main

import "github.com/pable/faceitwatch/cmd"

func main() {
	cmd.Execute()
}
