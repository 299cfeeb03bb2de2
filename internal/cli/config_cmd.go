package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/duanecilliers/openclaw-admin/internal/document"
	"github.com/duanecilliers/openclaw-admin/internal/domain"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get or set values in the openclaw configuration document",
	}

	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUnsetCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value (secrets masked)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := document.ParsePath(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(settings, log, false)
			if err != nil {
				return err
			}
			defer a.Close()

			doc, err := a.docs.Read(cmd.Context())
			if err != nil {
				return err
			}
			if !reveal {
				doc = document.Mask(doc)
			}

			val, ok := doc.Get(path...)
			if !ok {
				return fmt.Errorf("key %q not found", args[0])
			}
			return printValue(cmd.OutOrStdout(), val)
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print secrets unmasked")
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := document.ParsePath(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(settings, log, false)
			if err != nil {
				return err
			}
			defer a.Close()

			value := parseValue(args[1])
			if err := a.docs.Update(cmd.Context(), func(d *document.Document) error {
				return d.Set(path, value)
			}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", args[0], value)
			return nil
		},
	}
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := document.ParsePath(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(settings, log, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.docs.Update(cmd.Context(), func(d *document.Document) error {
				if !d.Delete(path) {
					return &domain.NotFoundError{Kind: "key", ID: args[0]}
				}
				return nil
			}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration document path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), settings.OpenClaw.ConfigPath)
		},
	}
}

// printValue prints strings raw, objects and arrays as YAML, and other
// scalars as Go formats them.
func printValue(w io.Writer, v any) error {
	switch val := v.(type) {
	case string:
		_, err := fmt.Fprintln(w, val)
		return err
	case map[string]any, []any:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(normalize(val)); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, val)
		return err
	}
}

// normalize turns json.Number leaves into plain numbers so YAML prints
// them unquoted.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = normalize(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = normalize(child)
		}
		return out
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	default:
		return v
	}
}

// parseValue reads a command-line value as JSON, so `true`, `42` and
// `{"enabled":false}` keep their types. Anything that is not a single JSON
// value is taken as a literal string.
func parseValue(s string) any {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return s
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return s
	}
	return v
}
