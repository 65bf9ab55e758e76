package main

import "github.com/verdantmart/storefront/cmd"

func main() {
	cmd.Start()
}
