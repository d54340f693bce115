// Command messageu is the MessageU client: an interactive menu, one-shot
// subcommands and a local HTTP API over the same session.
package main

func main() {
	Execute()
}
