package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-cross/internal/imaging"
)

// NewProcessCmd creates the process command.
func NewProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <image>",
		Short: "Draw a cross on an image file and render its histograms",
		Long: `Process runs one image through the pipeline and writes four artifacts to the
output directory: the original as JPEG, the crossed image as JPEG and a
histogram chart for each. The source file is left untouched.

Examples:
  # Green plus sign
  image-cross process photo.png --cross-type vertical --color "#00FF00"

  # Red diagonal X into a specific directory
  image-cross process photo.jpg --cross-type horizontal --color "#F00" --output-dir ./out`,
		Args: cobra.ExactArgs(1),
		RunE: runProcessCmd,
	}

	cmd.Flags().StringP("cross-type", "t", imaging.CrossTypeVertical,
		`Cross type: "vertical" (plus sign) or "horizontal" (diagonal X)`)
	cmd.Flags().String("color", "#FF0000", "Cross color as #RRGGBB or #RGB")
	cmd.Flags().Bool("json", false, "Print the result as JSON")

	return cmd
}

func runProcessCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	crossType, err := cmd.Flags().GetString("cross-type")
	if err != nil {
		return err
	}
	variant, err := imaging.ParseCrossVariant(crossType)
	if err != nil {
		return err
	}
	hex, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	c, err := imaging.ParseHexColor(hex)
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := newProcessor(cfg, logger).ProcessFile(ctx, args[0], imaging.CrossSpec{Variant: variant, Color: c})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(out, "%s: %dx%d %s, %s cross %s, thickness %d\n",
		result.ID, result.Width, result.Height, result.Format, result.CrossType, result.Color, result.Thickness)
	for _, p := range result.Artifacts.Paths() {
		fmt.Fprintf(out, "  %s\n", p)
	}
	return nil
}
