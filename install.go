package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// clientServerEntry is one server stanza in the MCP client's
// configuration file.
type clientServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

func defaultClientConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "Claude", "claude_desktop_config.json"), nil
}

// loadClientConfig reads the client configuration, keeping every key
// outside mcpServers verbatim so a rewrite never loses them. A
// missing file counts as an empty configuration.
func loadClientConfig(path string) (map[string]json.RawMessage, map[string]clientServerEntry, error) {
	doc := map[string]json.RawMessage{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, nil, err
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, nil, fmt.Errorf("parse client config %s: %w", path, err)
		}
	}

	servers := map[string]clientServerEntry{}
	if raw, present := doc["mcpServers"]; present {
		if err := json.Unmarshal(raw, &servers); err != nil {
			return nil, nil, fmt.Errorf("parse client config %s: %w", path, err)
		}
	}
	return doc, servers, nil
}

func saveClientConfig(path string, doc map[string]json.RawMessage, servers map[string]clientServerEntry) error {
	raw, err := json.Marshal(servers)
	if err != nil {
		return err
	}
	doc["mcpServers"] = raw

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func newInstallCmd() *cobra.Command {
	var (
		configPath string
		name       string
		envPairs   []string
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Add this bridge to the Claude Desktop configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configPath == "" {
				var err error
				configPath, err = defaultClientConfigPath()
				if err != nil {
					return err
				}
			}
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}

			var env map[string]string
			if len(envPairs) > 0 {
				env = make(map[string]string, len(envPairs))
				for _, pair := range envPairs {
					k, v, valid := strings.Cut(pair, "=")
					if !valid || k == "" {
						return fmt.Errorf("invalid --env format %q (expected KEY=VALUE)", pair)
					}
					env[k] = v
				}
			}

			doc, servers, err := loadClientConfig(configPath)
			if err != nil {
				return err
			}

			// Same name means update in place.
			_, existed := servers[name]
			servers[name] = clientServerEntry{
				Command: exe,
				Args:    []string{"serve"},
				Env:     env,
			}
			if err := saveClientConfig(configPath, doc, servers); err != nil {
				return err
			}

			if existed {
				fmt.Fprintf(cmd.OutOrStdout(), "updated %q in %s\n", name, configPath)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "installed %q in %s\n", name, configPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "client configuration file (default: the Claude Desktop location)")
	cmd.Flags().StringVar(&name, "name", "gns3", "server name to register under")
	cmd.Flags().StringArrayVar(&envPairs, "env", nil, "KEY=VALUE environment entry for the server (repeatable)")
	return cmd
}

func newUninstallCmd() *cobra.Command {
	var (
		configPath string
		name       string
	)

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove this bridge from the Claude Desktop configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configPath == "" {
				var err error
				configPath, err = defaultClientConfigPath()
				if err != nil {
					return err
				}
			}

			doc, servers, err := loadClientConfig(configPath)
			if err != nil {
				return err
			}
			if _, present := servers[name]; !present {
				return fmt.Errorf("no server named %q in %s", name, configPath)
			}
			delete(servers, name)
			if err := saveClientConfig(configPath, doc, servers); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %q from %s\n", name, configPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "client configuration file (default: the Claude Desktop location)")
	cmd.Flags().StringVar(&name, "name", "gns3", "server name to remove")
	return cmd
}

func newListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List servers in the Claude Desktop configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configPath == "" {
				var err error
				configPath, err = defaultClientConfigPath()
				if err != nil {
					return err
				}
			}

			_, servers, err := loadClientConfig(configPath)
			if err != nil {
				return err
			}
			if len(servers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no mcp servers configured")
				return nil
			}

			names := make([]string, 0, len(servers))
			for name := range servers {
				names = append(names, name)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCOMMAND\tENV")
			for _, name := range names {
				entry := servers[name]
				cmdline := entry.Command
				if len(entry.Args) > 0 {
					cmdline += " " + strings.Join(entry.Args, " ")
				}
				fmt.Fprintf(w, "%s\t%s\t%d\n", name, cmdline, len(entry.Env))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "client configuration file (default: the Claude Desktop location)")
	return cmd
}
