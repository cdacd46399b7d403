package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "levelgen",
		Short: "Procedural level layouts; roads, buildings & props",
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(curveCmd())
	rootCmd.AddCommand(schemaCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	var (
		seed  int64
		out   string
		scale float64
	)

	cmd := &cobra.Command{
		Use:   "generate [config.yaml]",
		Short: "Generate a level, writing json & png (uses a demo config if none given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runGenerate(path, seed, out, scale)
		},
	}

	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "rng seed (random if 0 & not set in config)")
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory")
	cmd.Flags().Float64Var(&scale, "scale", 4, "pixels per world unit in the png")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config.yaml]",
		Short: "Check a level config without generating anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func curveCmd() *cobra.Command {
	var (
		seed       int64
		out        string
		width      float64
		height     float64
		roadWidth  float64
		horizontal bool
	)

	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Generate a single curved road, writing json & png",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return runCurve(seed, out, width, height, roadWidth, horizontal)
		},
	}

	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "rng seed (random if 0)")
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory")
	cmd.Flags().Float64Var(&width, "width", 120, "map width")
	cmd.Flags().Float64Var(&height, "height", 120, "map height")
	cmd.Flags().Float64Var(&roadWidth, "road-width", 4, "road width")
	cmd.Flags().BoolVar(&horizontal, "horizontal", false, "run the road left to right")
	return cmd
}

func schemaCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print (or write) the JSON schema for level config files",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return runSchema(out)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "path to write the schema (stdout if empty)")
	return cmd
}
