package main

import "github.com/Hayser8/laboratorio3redes/cmd"

func main() {
	cmd.Execute()
}
