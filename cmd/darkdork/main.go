// Package main implements the darkdork CLI.
package main

func main() {
	Execute()
}
