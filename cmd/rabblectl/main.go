package main

import "github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/cli"

func main() {
	cli.Execute()
}
