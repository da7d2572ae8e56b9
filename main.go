package main

import (
	"log"

	"github.com/Lead-Studios/veritix-backend-sub009/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
