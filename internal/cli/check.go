package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/edgekit/bindlike/host"
)

var checkConfig string

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkConfig, "config", "c", "bindlike.yaml", "Path to binding config YAML")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a binding config without serving",
	Long:  "Loads the config, validates it, and provisions every binding once.\nCertificate keypairs are parsed, so a bad PEM or a missing file fails here\ninstead of on the first request.\n\nExit code 0 if the config provisions cleanly, 1 otherwise.",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := host.Load(checkConfig)
	if err != nil {
		return fmt.Errorf("%s: %w", checkConfig, err)
	}
	if _, err := host.Provision(cfg, zerolog.Nop()); err != nil {
		return fmt.Errorf("%s: %w", checkConfig, err)
	}

	for _, c := range cfg.MTLSCertificates {
		fmt.Printf("mtls_certificate  %s  (cert %s)\n", c.Binding, c.Certificate)
	}
	for _, s := range cfg.Services {
		fmt.Printf("service           %s  -> %s\n", s.Binding, s.Upstream)
	}
	for name := range cfg.Vars {
		fmt.Printf("var               %s\n", name)
	}
	fmt.Println("ok")
	return nil
}
