package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/webseeker/server/internal/login"
)

func main() {
	_ = godotenv.Load(".env")

	serverURL := flag.String("server", "http://localhost:8080", "verification backend base URL")
	token := flag.String("token", os.Getenv("SESSION_TOKEN"), "session bearer token")
	flag.Parse()

	client := login.NewClient(*serverURL, *token)
	flow := login.NewFlow(client)

	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Secure Login")
	for {
		switch flow.State() {
		case login.StatePhoneInput:
			phone, err := prompt(reader, "Enter your phone number to get a code (e.g. 14155552671)")
			if err != nil {
				log.Fatalf("read input: %v", err)
			}
			res := flow.SubmitPhone(ctx, phone)
			fmt.Println(res.Message)

		case login.StateCodeInput:
			code, err := prompt(reader, "Enter the code you received")
			if err != nil {
				log.Fatalf("read input: %v", err)
			}
			res := flow.SubmitCode(ctx, code)
			fmt.Println(res.Message)

		case login.StateSuccess:
			return

		case login.StateError:
			answer, err := prompt(reader, "Try again? (y/n)")
			if err != nil {
				log.Fatalf("read input: %v", err)
			}
			if strings.ToLower(answer) != "y" {
				os.Exit(1)
			}
			flow.Dismiss()
		}
	}
}

// prompt prints a prompt and reads a single trimmed line of input
func prompt(reader *bufio.Reader, text string) (string, error) {
	fmt.Print(text + "\n> ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
