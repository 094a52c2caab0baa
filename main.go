package main

import "finderent-backend/internal/app"

func main() {
	app.Run()
}
