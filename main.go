package main

import "github.com/y7ut/settingsgrid/cmd"

func main() {
	cmd.Execute()
}
