// notekeeper is an interactive notebook with a small account and permission
// registry, all held in memory.
package main

import "os"

func main() {
	os.Exit(Execute())
}
