package main

import "taskrealm/server/cmd/questmap/root"

func main() {
	root.Execute()
}
