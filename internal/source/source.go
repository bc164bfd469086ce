package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ivlev/rviewer/internal/system"
)

// InputDir is searched for the newest protocol file when the input is
// "latest".
const InputDir = "input"

// Open returns the protocol stream named by input:
//
//	"" or "-"             standard input
//	"latest"              newest *.txt in input/
//	mqtt://host:port/t    lines published to MQTT topic t
//	anything else         a file path
func Open(ctx context.Context, input string) (io.ReadCloser, error) {
	switch {
	case input == "" || input == "-":
		return io.NopCloser(os.Stdin), nil
	case input == "latest":
		latest, err := system.FindLatestFile(InputDir, ".txt", ".rv")
		if err != nil {
			return nil, err
		}
		fmt.Printf("[*] Выбран файл: %s\n", latest)
		input = latest
	case strings.HasPrefix(input, "mqtt://"), strings.HasPrefix(input, "mqtts://"):
		s, err := OpenMQTT(ctx, input)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	f, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}
