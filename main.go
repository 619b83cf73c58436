package main

import "github.com/quocvuong92/johnathan-agent/cmd"

func main() {
	cmd.Execute()
}
