package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const defaultRemoteURL = "https://plexi.cloudflareclient.com"

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if len(args) < 2 {
		usage(args)
		return 1
	}

	switch args[1] {
	case "verify":
		return runVerify(args[2:])
	case "sign":
		return runSign(args[2:])
	case "audit":
		return runAudit(args[2:])
	case "ls":
		return runLs(args[2:])
	case "report":
		return runReport(args[2:])
	}

	usage(args)
	return 1
}

func usage(args []string) {
	name := "plexi"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  %s verify (--publickey-hex <hex>|--publickey-base64 <b64>) [--in <record.json>] [--proof <file>] [--prev-digest <hex>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s sign --namespace <ns> --epoch <n> --digest <hex> (--key-hex <hex>|--key-base64 <b64>) [--ciphersuite <name>] [--out <file>]\n", name)
	fmt.Fprintf(os.Stderr, "  %s audit --namespace <ns> [--remote-url <url>] [--epoch <n>] [--verifying-key <hex>] [--no-verify] [--long]\n", name)
	fmt.Fprintf(os.Stderr, "  %s ls [--remote-url <url>] [--namespace <ns>] [--long]\n", name)
	fmt.Fprintf(os.Stderr, "  %s report --namespace <ns> --epoch <n> --digest <hex> (--key-hex <hex>|--key-base64 <b64>) [--remote-url <url>] [--submit]\n", name)
}

func remoteURL(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("PLEXI_REMOTE_URL"); env != "" {
		return env
	}
	return defaultRemoteURL
}

func fileOrStdin(path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}
