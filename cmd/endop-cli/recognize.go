package main

import (
	"fmt"
	"image"
	"io"
	"path/filepath"

	"github.com/akhelper/endop-service/config"
	"github.com/akhelper/endop-service/endoperation"
	"github.com/akhelper/endop-service/pkg/framedump"
	"github.com/akhelper/endop-service/pkg/pipeline"
	"github.com/bytedance/sonic"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type recognizeOptions struct {
	variant string
	learn   bool
	pretty  bool
}

// fileResult is one line of recognize output.
type fileResult struct {
	File   string               `json:"file"`
	Result *endoperation.Result `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`
}

func newRecognizeCmd(cfg func() *config.Config) *cobra.Command {
	opts := &recognizeOptions{}
	cmd := &cobra.Command{
		Use:   "recognize <image>...",
		Short: "Read the operation, stars and rewards from screenshots",
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

			failed := 0
			for _, path := range args {
				out := recognizeFile(p.Recognizer, variant, path, opts.learn, cfg().DebugDir)
				if out.Error != "" {
					failed++
				}
				if err := writeJSON(cmd.OutOrStdout(), out, opts.pretty); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d screenshots failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.variant, "variant", "ep10", "Results screen layout: legacy, ep10, sof or interlocking")
	cmd.Flags().BoolVar(&opts.learn, "learn", false, "Store item cells the classifier is unsure about")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent the JSON output")
	return cmd
}

type screenReader interface {
	Recognize(v endoperation.Variant, img image.Image, opts endoperation.Options) (*endoperation.Result, error)
}

func recognizeFile(r screenReader, v endoperation.Variant, path string, learn bool, debugDir string) fileResult {
	out := fileResult{File: path}
	img, err := imaging.Open(path)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	res, err := r.Recognize(v, img, endoperation.Options{LearnUnrecognized: learn})
	if err != nil {
		out.Error = err.Error()
		if endoperation.IsStructural(err) && debugDir != "" {
			framedump.SaveQuietly(filepath.Join(debugDir, "cli"), "failed", img)
		}
		log.Error().Err(err).Str("file", path).Msg("Recognition failed")
		return out
	}
	out.Result = res
	return out
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = sonic.ConfigStd.MarshalIndent(v, "", "  ")
	} else {
		data, err = sonic.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
