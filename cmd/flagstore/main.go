/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/fagerli/flagstore/cmd/flagstore/cmd"

func main() {
	cmd.Execute()
}
