package main

import (
	"github.com/akhelper/endop-service/config"
	"github.com/akhelper/endop-service/endoperation"
	"github.com/akhelper/endop-service/pkg/pipeline"
	"github.com/akhelper/endop-service/viewport"
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
)

type checkOptions struct {
	variant    string
	friendship bool
	strict     bool
	levelUp    bool
}

type checkResult struct {
	File    string                    `json:"file"`
	Present bool                      `json:"present"`
	Rects   *endoperation.ScreenRects `json:"rects,omitempty"`
	Error   string                    `json:"error,omitempty"`
}

func newCheckCmd(cfg func() *config.Config) *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check <image>...",
		Short: "Tell whether screenshots show the results screen or the level-up popup",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variant, err := endoperation.ParseVariant(opts.variant)
			if err != nil {
				return err
			}
			p, err := pipeline.Build(cfg())
			if err != nil {
				return err
			}
			defer p.Close()

			for _, path := range args {
				out := checkResult{File: path}
				img, err := imaging.Open(path)
				if err == nil {
					if opts.levelUp {
						out.Present, err = p.Checker.CheckLevelUpPopup(img)
					} else {
						out.Present, err = p.Checker.CheckPresence(variant, opts.friendship, opts.strict, img)
					}
				}
				if err == nil && out.Present {
					rects := endoperation.RectsFor(viewport.Of(img), opts.levelUp)
					out.Rects = &rects
				}
				if err != nil {
					out.Error = err.Error()
				}
				if err := writeJSON(cmd.OutOrStdout(), out, false); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.variant, "variant", "ep10", "Results screen layout: legacy, ep10, sof or interlocking")
	cmd.Flags().BoolVar(&opts.friendship, "friendship", false, "Detect the screen by its friendship badge")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Compare the legacy banner or badge (legacy only)")
	cmd.Flags().BoolVar(&opts.levelUp, "level-up", false, "Check for the level-up popup instead")
	return cmd
}
