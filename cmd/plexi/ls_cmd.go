package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"plexi/internal/infra/transport"
)

func runLs(args []string) int {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var remote string
	var namespace string
	var long bool

	fs.StringVar(&remote, "remote-url", "", "auditor endpoint (default $PLEXI_REMOTE_URL)")
	fs.StringVar(&namespace, "namespace", "", "show a single namespace")
	fs.BoolVar(&long, "long", false, "print namespace details")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := transport.New(remoteURL(remote), zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "remote: %v\n", err)
		return 1
	}

	if namespace != "" {
		info, err := client.Namespace(ctx, namespace)
		if err != nil {
			fmt.Fprintf(os.Stderr, "namespace %s: %v\n", namespace, err)
			return 1
		}
		fmt.Println(formatNamespace(long, info))
		return 0
	}

	all, err := client.Namespaces(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list namespaces: %v\n", err)
		return 1
	}
	for _, info := range all.Namespaces {
		fmt.Println(formatNamespace(long, info))
	}
	return 0
}
