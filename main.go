/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/tristendillon/pytree/cmd"

func main() {
	cmd.Execute()
}
