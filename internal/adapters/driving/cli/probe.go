package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/compassx/internal/core/domain"
)

var probeJSON bool

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Show heading sources and which one each channel uses",
	Long: `Probes the simulated device for heading sources and reports which
provider the true and magnetic channels would select right now.`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().BoolVar(&probeJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(probeCmd)
}

type probeOutput struct {
	Capabilities domain.Capabilities `json:"capabilities"`
	True         domain.ProviderKind `json:"true"`
	Magnetic     domain.ProviderKind `json:"magnetic"`
}

func runProbe(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	sel := rt.compass.Selection()

	if probeJSON {
		data, err := json.MarshalIndent(probeOutput{
			Capabilities: sel.Capabilities,
			True:         sel.True,
			Magnetic:     sel.Magnetic,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal probe: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	caps := sel.Capabilities
	cmd.Println("Heading Sources")
	cmd.Println("===============")
	cmd.Printf("  Fused orientation service: %s\n", yesNo(caps.FusedService))
	cmd.Printf("  Rotation vector sensor:    %s\n", yesNo(caps.RotationVector))
	cmd.Printf("  Heading sensor:            %s\n", yesNo(caps.RawHeading))
	cmd.Printf("  Location:                  %s\n", yesNo(caps.Location))
	cmd.Println()
	cmd.Println("Selection")
	cmd.Println("=========")
	cmd.Printf("  True heading:     %s\n", sel.True.Description())
	cmd.Printf("  Magnetic heading: %s\n", sel.Magnetic.Description())
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
