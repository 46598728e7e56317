package main

import (
	"fmt"
	"os"

	"folioscan/internal/cli"

	_ "folioscan/internal/ocr/claude"
	_ "folioscan/internal/ocr/gemini"
	_ "folioscan/internal/ocr/openai"
	_ "folioscan/internal/ocr/tesseract"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
