package main

import "commission-tracker/cmd/admin/cmd"

func main() {
	cmd.Execute()
}
