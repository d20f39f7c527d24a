// Command cardctl is the operator toolbox for the card CRM: password hashing,
// number and link checks, and offline backup of the contact store.
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
