package endoperation

import (
	_ "embed"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	maa "github.com/MaaXYZ/maa-framework-go/v4"
	"github.com/akhelper/endop-service/item"
	"github.com/akhelper/endop-service/ocr"
	"github.com/akhelper/endop-service/pkg/framedump"
	"github.com/akhelper/endop-service/pkg/maafocus"
	"github.com/akhelper/endop-service/pkg/procstat"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

//go:embed messages/recognition_finished.html
var recognitionFinishedHTML string

//go:embed messages/recognition_failed.html
var recognitionFailedHTML string

//go:embed messages/low_confidence.html
var lowConfidenceHTML string

// EndOperationParam is the custom_recognition_param of EndOperationRecognize.
type EndOperationParam struct {
	// Variant is the results screen layout: legacy, ep10, sof or interlocking.
	Variant string `json:"variant,omitempty"`
	// LearnUnrecognized stores item cells the classifier is unsure about.
	LearnUnrecognized bool `json:"learn_unrecognized,omitempty"`
	// Print shows the outcome in the GUI.
	Print bool `json:"print,omitempty"`
	// OCRNode is the pipeline node used for text recognition.
	OCRNode string `json:"ocr_node,omitempty"`
}

var defaultEndOperationParam = EndOperationParam{
	Variant: "ep10",
	OCRNode: "EndOperationOCR",
}

// EndOperationRecognition reads the results screen and returns the Result
// as its detail. It hits whenever the screen could be parsed.
type EndOperationRecognition struct {
	deps *agentDeps
}

var _ maa.CustomRecognitionRunner = &EndOperationRecognition{}

// Run implements maa.CustomRecognitionRunner
func (r *EndOperationRecognition) Run(ctx *maa.Context, arg *maa.CustomRecognitionArg) (*maa.CustomRecognitionResult, bool) {
	if arg == nil || arg.Img == nil {
		return nil, false
	}
	param, err := parseEndOperationParam(arg.CustomRecognitionParam)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse parameters for EndOperationRecognize")
		return nil, false
	}
	variant, err := ParseVariant(param.Variant)
	if err != nil {
		log.Error().Err(err).Msg("Invalid variant for EndOperationRecognize")
		return nil, false
	}

	classifier, err := r.deps.initClassifier()
	if err != nil {
		return nil, false
	}
	registry := ocr.NewCachedRegistry(ocr.MaaFactory(ctx, param.OCRNode))
	quantityEngine, err := registry.Acquire(operationLang)
	if err != nil {
		log.Error().Err(err).Msg("Failed to acquire OCR engine")
		return nil, false
	}
	items := &item.Reader{Classifier: classifier, Quantity: &item.QuantityReader{Engine: quantityEngine}}
	rec := New(r.deps.initResources(), registry, items)

	debugDir := ""
	if r.deps.cfg.DebugDir != "" {
		debugDir = filepath.Join(r.deps.cfg.DebugDir, "end_operation")
	}

	result, err := rec.Recognize(variant, arg.Img, Options{LearnUnrecognized: param.LearnUnrecognized})
	if err != nil {
		framedump.SaveQuietly(debugDir, "failed", arg.Img)
		if param.Print {
			maafocus.NodeActionStarting(ctx, fmt.Sprintf(recognitionFailedHTML, html.EscapeString(err.Error())))
		}
		return nil, false
	}
	if result.LowConfidence {
		framedump.SaveQuietly(debugDir, "low_confidence", arg.Img)
	}

	detailJSON, err := sonic.Marshal(result)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal result")
		return nil, false
	}
	procstat.Attach(log.Debug()).Str("variant", variant.String()).Msg("EndOperationRecognize finished")

	if param.Print {
		maafocus.NodeActionStarting(ctx, formatResultHTML(result))
		if result.LowConfidence {
			maafocus.NodeActionStarting(ctx, lowConfidenceHTML)
		}
	}

	return &maa.CustomRecognitionResult{
		Box:    arg.Roi,
		Detail: string(detailJSON),
	}, true
}

func parseEndOperationParam(paramStr string) (*EndOperationParam, error) {
	param := defaultEndOperationParam
	if paramStr == "" {
		return &param, nil
	}
	if err := sonic.UnmarshalString(paramStr, &param); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parameters: %w", err)
	}
	if param.Variant == "" {
		param.Variant = defaultEndOperationParam.Variant
	}
	if param.OCRNode == "" {
		param.OCRNode = defaultEndOperationParam.OCRNode
	}
	return &param, nil
}

// formatResultHTML renders one table row per group.
func formatResultHTML(result *Result) string {
	var b strings.Builder
	for _, g := range result.Items {
		names := make([]string, 0, len(g.Items))
		for _, it := range g.Items {
			name := html.EscapeString(it.Name)
			if it.Quantity > 0 {
				name = fmt.Sprintf("%s ×%d", name, it.Quantity)
			}
			if it.LowConfidence {
				name = fmt.Sprintf(`<span style="color: #ffa500;">%s</span>`, name)
			}
			names = append(names, name)
		}
		b.WriteString("<tr>")
		b.WriteString(fmt.Sprintf(`<td style="padding: 2px 4px;">%s</td>`, html.EscapeString(g.Group)))
		b.WriteString(fmt.Sprintf(`<td style="padding: 2px 4px;">%s</td>`, strings.Join(names, "、")))
		b.WriteString("</tr>")
	}
	return fmt.Sprintf(recognitionFinishedHTML, html.EscapeString(result.Operation), result.StarCount(), b.String())
}
