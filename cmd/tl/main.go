// Command tl links one or more Telda-2 relocatable objects into a
// single linked object or executable.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
