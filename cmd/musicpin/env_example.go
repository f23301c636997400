package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("✅ Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# musicpin Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	content.WriteString("# Format: MUSICPIN_<SETTING>=value\n")
	content.WriteString("# CLI equivalent: --<setting>\n")
	content.WriteString("#\n\n")

	writeEnvSection(&content, cmd, "Providers (an interface whose provider has no base URL always fails over)",
		"sby-base-url", "xf-base-url", "xzg-base-url", "lz-base-url", "cgg-base-url")
	writeEnvSection(&content, cmd, "Upstream calls",
		"http-timeout", "http-max-body-bytes", "page-size")
	writeEnvSection(&content, cmd, "Resolution",
		"relevance-split-min", "relevance-whole-min", "relevance-single-min", "disabled-interfaces")
	writeEnvSection(&content, cmd, "HTTP Server",
		"server-host", "server-port", "rate-limit-per-minute")
	writeEnvSection(&content, cmd, "Localization and Logging",
		"language", "log-level", "log-format")

	return content.String()
}

func writeEnvSection(content *strings.Builder, cmd *cobra.Command, title string, flagNames ...string) {
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# %s\n", title)
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# CLI: --%s\n", strings.Join(flagNames, ", --"))

	for _, name := range flagNames {
		f := cmd.Flag(name)
		if f == nil {
			continue
		}
		fmt.Fprintf(content, "# %s\n", f.Usage)
		fmt.Fprintf(content, "%s=%s\n", flagToEnvVar(name), envDefault(f.DefValue))
	}
	content.WriteString("\n")
}

// envDefault renders pflag defaults the way they are written in a .env file.
func envDefault(def string) string {
	if def == "[]" {
		return ""
	}
	return strings.Trim(def, "[]")
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
