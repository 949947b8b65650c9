// Command ta assembles a Telda-2 source file into a relocatable object.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
