package main

import "github.com/nevermarine/city-backend/cmd/server/cmd"

func main() {
	cmd.Execute()
}
