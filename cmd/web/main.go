package main

import "recording_backend/internal/app"

func main() {
	app.Run()
}
