package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	skm "github.com/flywave/go-skm"
	"github.com/flywave/go-skm/internal/config"
)

const version = "0.2.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		skin       bool
		inPlace    bool
		shape      int
	)

	cmd := &cobra.Command{
		Use:           "skmconv INPUT OUTPUT",
		Short:         "Convert shapes between skinned assets (.skm, .glb, .gltf) and OBJ",
		Version:       version,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.Config
			if configFile != "" {
				var err error
				if cfg, err = config.Load(configFile); err != nil {
					fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
					return err
				}
			}

			var flags config.Flags
			if cmd.Flags().Changed("skin") {
				flags.Skin = &skin
			}
			if cmd.Flags().Changed("in-place") {
				flags.InPlace = &inPlace
			}
			if cmd.Flags().Changed("shape") {
				flags.Shape = &shape
			}
			cfg.Resolve(flags)

			conv := skm.NewConverter(cfg.Options())
			conv.Out = cmd.OutOrStdout()
			conv.Chooser = cfg.Chooser(&skm.PromptChooser{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()})

			if err := conv.Convert(args[0], args[1]); err != nil {
				if errors.Is(err, skm.ErrUnsupportedConversion) {
					cmd.Usage()
				}
				color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
				return err
			}
			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Done!")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&skin, "skin", "s", false, "apply the skin displacement (export) or remove it (import)")
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "overwrite the asset instead of writing OUTPUT+ext")
	cmd.Flags().IntVar(&shape, "shape", 0, "index of the shape to use when several match")
	cmd.Flags().StringVar(&configFile, "config", "", "path to a JSON option file")
	return cmd
}
