package main

import (
	"log"

	"vetclinic-backend/cmd"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cmd.Execute()
}
