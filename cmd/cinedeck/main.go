package main

import "github.com/oceanbase/cinedeck-go/internal/cmd"

func main() {
	cmd.Execute()
}
