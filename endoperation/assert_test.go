package endoperation

import "testing"

func TestParseAssertParam(t *testing.T) {
	bad := []string{
		"",
		`{"expected":[]}`,
		`{"expected":[{"operation":""}]}`,
		`{"expected":[{"operation":"1-7","min_stars":4}]}`,
		`{"expected":[{"operation":"("}]}`,
		`{"expected":[{"operation":"1-7"}],"variant":"nope"}`,
	}
	for _, s := range bad {
		if _, _, err := parseAssertParam(s); err == nil {
			t.Errorf("parseAssertParam(%q) succeeded", s)
		}
	}

	param, conds, err := parseAssertParam(`{"expected":[{"operation":"1-7","min_stars":3},{"operation":"S\\d-\\d"}]}`)
	if err != nil {
		t.Fatalf("parseAssertParam() error = %v", err)
	}
	if param.Variant != "ep10" || len(conds) != 2 {
		t.Errorf("parseAssertParam() = %+v, %d conditions", param, len(conds))
	}
}

func TestMatchCondition(t *testing.T) {
	_, conds, err := parseAssertParam(`{"expected":[{"operation":"1-7","min_stars":3},{"operation":"S\\d-\\d"}]}`)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		res      Result
		allowLow bool
		want     bool
	}{
		{Result{Operation: "1-7", Stars: [3]bool{true, true, true}}, false, true},
		{Result{Operation: "1-7", Stars: [3]bool{true, true, false}}, false, false},
		{Result{Operation: "11-7", Stars: [3]bool{true, true, true}}, false, false},
		{Result{Operation: "S3-1"}, false, true},
		{Result{Operation: "S3-1", LowConfidence: true}, false, false},
		{Result{Operation: "S3-1", LowConfidence: true}, true, true},
	}
	for _, tt := range tests {
		if _, got := matchCondition(&tt.res, conds, tt.allowLow); got != tt.want {
			t.Errorf("matchCondition(%+v, allowLow=%v) = %v, want %v", tt.res, tt.allowLow, got, tt.want)
		}
	}
}

func TestUnwrapResult(t *testing.T) {
	res, err := unwrapResult(`{"best":{"detail":{"operation":"1-7","stars":[true,false,false],"items":[],"low_confidence":false}}}`)
	if err != nil {
		t.Fatalf("unwrapResult() error = %v", err)
	}
	if res.Operation != "1-7" || res.StarCount() != 1 {
		t.Errorf("unwrapResult() = %+v", res)
	}
	if _, err := unwrapResult(`{"best":`); err == nil {
		t.Error("unwrapResult() on truncated input succeeded")
	}
}
