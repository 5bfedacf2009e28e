package endoperation

import (
	"fmt"

	maa "github.com/MaaXYZ/maa-framework-go/v4"
	"github.com/akhelper/endop-service/ocr"
	"github.com/akhelper/endop-service/pkg/maafocus"
	"github.com/akhelper/endop-service/viewport"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

// EndOperationCheckParam is the custom_recognition_param of
// EndOperationCheck.
type EndOperationCheckParam struct {
	Variant    string `json:"variant,omitempty"`
	Friendship bool   `json:"friendship,omitempty"`
	// LevelUp checks for the level-up popup instead of the results screen.
	LevelUp bool `json:"level_up,omitempty"`
	// Strict uses the legacy banner or badge comparison instead of the
	// generic end banner. Legacy only.
	Strict  bool   `json:"strict,omitempty"`
	OCRNode string `json:"ocr_node,omitempty"`
	Print   bool   `json:"print,omitempty"`
}

// checkDetail is the recognition detail of a hit: the parameters used and
// where to tap or watch next.
type checkDetail struct {
	EndOperationCheckParam
	ScreenRects
}

// EndOperationCheckRecognition hits when the results screen, or with
// level_up the level-up popup, is showing.
type EndOperationCheckRecognition struct {
	deps *agentDeps
}

var _ maa.CustomRecognitionRunner = &EndOperationCheckRecognition{}

// Run implements maa.CustomRecognitionRunner
func (r *EndOperationCheckRecognition) Run(ctx *maa.Context, arg *maa.CustomRecognitionArg) (*maa.CustomRecognitionResult, bool) {
	if arg == nil || arg.Img == nil {
		return nil, false
	}
	param, err := parseCheckParam(arg.CustomRecognitionParam)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse parameters for EndOperationCheck")
		return nil, false
	}

	checker := &PresenceChecker{
		Resources: r.deps.initResources(),
		OCR:       ocr.NewCachedRegistry(ocr.MaaFactory(ctx, param.OCRNode)),
	}

	var present bool
	if param.LevelUp {
		present, err = checker.CheckLevelUpPopup(arg.Img)
	} else {
		var variant Variant
		variant, err = ParseVariant(param.Variant)
		if err == nil {
			present, err = checker.CheckPresence(variant, param.Friendship, param.Strict, arg.Img)
		}
	}
	if err != nil {
		log.Error().Err(err).Str("variant", param.Variant).Msg("EndOperationCheck failed")
		return nil, false
	}
	log.Debug().Str("variant", param.Variant).Bool("levelUp", param.LevelUp).Bool("present", present).Msg("EndOperationCheck done")
	if !present {
		return nil, false
	}
	if param.Print {
		what := "Results screen"
		if param.LevelUp {
			what = "Level-up popup"
		}
		maafocus.Colored(ctx, what+" detected", "#00bfff")
	}

	detail, err := sonic.MarshalString(checkDetail{
		EndOperationCheckParam: *param,
		ScreenRects:            RectsFor(viewport.Of(arg.Img), param.LevelUp),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal check detail")
		return nil, false
	}
	return &maa.CustomRecognitionResult{
		Box:    arg.Roi,
		Detail: detail,
	}, true
}

func parseCheckParam(paramStr string) (*EndOperationCheckParam, error) {
	param := EndOperationCheckParam{Variant: "ep10", OCRNode: defaultEndOperationParam.OCRNode}
	if paramStr != "" {
		if err := sonic.UnmarshalString(paramStr, &param); err != nil {
			return nil, fmt.Errorf("failed to unmarshal parameters: %w", err)
		}
	}
	if param.OCRNode == "" {
		param.OCRNode = defaultEndOperationParam.OCRNode
	}
	return &param, nil
}
