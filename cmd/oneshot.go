package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"nexadomus/internal/service"

	"github.com/spf13/cobra"
)

func runSend(cmd *cobra.Command, args []string) error {
	params, err := parseParams(args[2:])
	if err != nil {
		return err
	}
	command, err := service.ParseCommand(args[0], args[1], params)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.services.Control(cmd.Context(), command)
	if perr := printJSON(cmd.OutOrStdout(), map[string]any{
		"status":  out.Classification(),
		"outcome": out,
	}); perr != nil {
		return perr
	}
	return err
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.services.Refresh(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), st)
}

// parseParams reads key=value command parameters.
func parseParams(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(args))
	for _, kv := range args {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("parameter %q: want key=value", kv)
		}
		params[strings.TrimSpace(k)] = v
	}
	return params, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
