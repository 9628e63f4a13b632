/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/lampe2020/l2db/cmd/l2db/cmd"
)

func main() {
	cmd.Execute()
}
