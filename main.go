package main

import "github.com/saadjs/keto-cli/cmd/keto"

func main() {
	keto.Execute()
}
