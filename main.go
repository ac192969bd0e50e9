package main

import "slibuy-scraper/cmd"

func main() {
	cmd.Execute()
}
