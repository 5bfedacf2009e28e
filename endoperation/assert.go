// Copyright (c) 2026 Harry Huang
package endoperation

import (
	"encoding/json"
	"fmt"
	"regexp"

	maa "github.com/MaaXYZ/maa-framework-go/v4"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

// OperationCondition is one accepted outcome of an operation.
type OperationCondition struct {
	// Operation is a regular expression matched against the whole code.
	Operation string `json:"operation"`
	MinStars  int    `json:"min_stars,omitempty"`
}

// EndOperationAssertParam is the custom_recognition_param of
// EndOperationAssert.
type EndOperationAssertParam struct {
	// Expected is a list of conditions to check, using OR logic.
	Expected []OperationCondition `json:"expected"`
	Variant  string               `json:"variant,omitempty"`
	// AllowLowConfidence accepts results that were read with doubt.
	AllowLowConfidence bool `json:"allow_low_confidence,omitempty"`
}

type compiledCondition struct {
	OperationCondition
	re *regexp.Regexp
}

// EndOperationAssert hits when the results screen shows one of the expected
// operations with enough stars.
type EndOperationAssert struct{}

var _ maa.CustomRecognitionRunner = &EndOperationAssert{}

// Run implements maa.CustomRecognitionRunner
func (r *EndOperationAssert) Run(ctx *maa.Context, arg *maa.CustomRecognitionArg) (*maa.CustomRecognitionResult, bool) {
	param, conds, err := parseAssertParam(arg.CustomRecognitionParam)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse parameters for EndOperationAssert")
		return nil, false
	}

	nodeName := "EndOperationAssert_Recognize"
	config := map[string]any{
		nodeName: map[string]any{
			"recognition":        "Custom",
			"custom_recognition": "EndOperationRecognize",
			"custom_recognition_param": map[string]any{
				"variant": param.Variant,
			},
		},
	}

	// We pass the same image provided to this recognition
	res, err := ctx.RunRecognition(nodeName, arg.Img, config)
	if err != nil {
		log.Error().Err(err).Msg("Failed to run EndOperationRecognize during assertion")
		return nil, false
	}
	if res == nil || res.DetailJson == "" {
		log.Info().Msg("Operation assertion not satisfied, recognition returned no result")
		return nil, false
	}

	result, err := unwrapResult(res.DetailJson)
	if err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal results screen detail")
		return nil, false
	}
	cond, ok := matchCondition(result, conds, param.AllowLowConfidence)
	if !ok {
		log.Info().
			Str("operation", result.Operation).
			Int("stars", result.StarCount()).
			Msg("Operation assertion not satisfied, no conditions met")
		return nil, false
	}
	log.Info().
		Interface("expected", cond).
		Msg("Operation assertion satisfied")
	return &maa.CustomRecognitionResult{
		Box:    arg.Roi,
		Detail: res.DetailJson,
	}, true
}

// unwrapResult extracts the Result from the detail of a nested recognition.
func unwrapResult(detailJSON string) (*Result, error) {
	var wrapped struct {
		Best struct {
			Detail json.RawMessage `json:"detail"`
		} `json:"best"`
	}
	if err := sonic.UnmarshalString(detailJSON, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wrapped detail: %w", err)
	}
	var result Result
	if err := sonic.Unmarshal(wrapped.Best.Detail, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &result, nil
}

func matchCondition(result *Result, conds []compiledCondition, allowLow bool) (OperationCondition, bool) {
	if result.LowConfidence && !allowLow {
		return OperationCondition{}, false
	}
	for _, c := range conds {
		if c.re.MatchString(result.Operation) && result.StarCount() >= c.MinStars {
			return c.OperationCondition, true
		}
	}
	return OperationCondition{}, false
}

func parseAssertParam(paramStr string) (*EndOperationAssertParam, []compiledCondition, error) {
	param := EndOperationAssertParam{Variant: defaultEndOperationParam.Variant}
	if paramStr != "" {
		if err := sonic.UnmarshalString(paramStr, &param); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal parameters: %w", err)
		}
	}
	if _, err := ParseVariant(param.Variant); err != nil {
		return nil, nil, err
	}

	if len(param.Expected) == 0 {
		return nil, nil, fmt.Errorf("expected conditions must be provided")
	}
	conds := make([]compiledCondition, 0, len(param.Expected))
	for i, c := range param.Expected {
		if c.Operation == "" {
			return nil, nil, fmt.Errorf("operation must be provided for expected condition at index %d", i)
		}
		if c.MinStars < 0 || c.MinStars > 3 {
			return nil, nil, fmt.Errorf("min_stars must be between 0 and 3 for expected condition at index %d", i)
		}
		re, err := regexp.Compile("^(?:" + c.Operation + ")$")
		if err != nil {
			return nil, nil, fmt.Errorf("invalid operation pattern at index %d: %w", i, err)
		}
		conds = append(conds, compiledCondition{c, re})
	}
	return &param, conds, nil
}
