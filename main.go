package main

import "profile-directory/cmd"

func main() {
	cmd.Execute()
}
