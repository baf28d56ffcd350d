package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

func main() {
	addr := pflag.StringP("addr", "a", "localhost:9090", "session server address")
	timeout := pflag.Duration("timeout", 5*time.Second, "dial timeout")
	quiet := pflag.BoolP("quiet", "q", false, "do not print the prompt")
	pflag.Parse()

	conn, err := net.DialTimeout("tcp", *addr, *timeout)
	if err != nil {
		log.Fatalf("connect %s: %v", *addr, err)
	}
	defer conn.Close()

	prompt := "> "
	if *quiet {
		prompt = ""
	}
	if err := run(os.Stdin, os.Stdout, conn, prompt); err != nil {
		log.Fatalf("session: %v", err)
	}
}

// run forwards each input line to the server and prints the reply, which
// ends at the first blank line.
func run(in io.Reader, out io.Writer, conn net.Conn, prompt string) error {
	input := bufio.NewScanner(in)
	replies := bufio.NewReader(conn)

	for {
		fmt.Fprint(out, prompt)
		if !input.Scan() {
			return input.Err()
		}
		line := input.Text()
		if _, err := fmt.Fprintln(conn, line); err != nil {
			return err
		}

		for {
			l, err := replies.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			if l == "\n" {
				break
			}
			fmt.Fprint(out, l)
		}

		if strings.TrimSpace(line) == "quit" {
			return nil
		}
	}
}
