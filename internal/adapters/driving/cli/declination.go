package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"
)

var declinationDate string

var declinationCmd = &cobra.Command{
	Use:   "declination",
	Short: "Compute magnetic declination at a position",
	Long: `Evaluates the World Magnetic Model at --lat, --lon and --alt.

Declination is the angle from true north to magnetic north, positive east.
Add it to a magnetic heading to get a true heading.`,
	Args: cobra.NoArgs,
	RunE: runDeclination,
}

func init() {
	declinationCmd.Flags().StringVar(&declinationDate, "date", "", "date as YYYY-MM-DD (default today)")
	rootCmd.AddCommand(declinationCmd)
}

func runDeclination(cmd *cobra.Command, _ []string) error {
	at := time.Now().UTC()
	if declinationDate != "" {
		parsed, err := time.Parse(time.DateOnly, declinationDate)
		if err != nil {
			return fmt.Errorf("invalid date %q: want YYYY-MM-DD", declinationDate)
		}
		at = parsed
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}

	decl, err := rt.compass.Declination(devFlags.latitude, devFlags.longitude, devFlags.altitude, at)
	if err != nil {
		return err
	}

	cmd.Printf("Declination: %s\n", formatDeclination(decl))
	cmd.Printf("  Position: %.4f, %.4f at %.0f m\n", devFlags.latitude, devFlags.longitude, devFlags.altitude)
	cmd.Printf("  Date:     %s\n", at.Format(time.DateOnly))
	return nil
}

func formatDeclination(decl float64) string {
	dir := "E"
	if decl < 0 {
		dir = "W"
	}
	return fmt.Sprintf("%.2f° %s", math.Abs(decl), dir)
}
