package main

import "github.com/spatocode/s3html/cmd"

func main() {
	cmd.Execute()
}
