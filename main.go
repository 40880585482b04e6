// Package main is the entry point of the chatledger application. It turns exported
// chat transcripts into a categorized ledger of work requests.
package main

import "chatledger/cmd"

func main() {
	cmd.Execute()
}
