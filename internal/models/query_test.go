package models

import (
	"errors"
	"testing"
)

func TestSearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   *SearchQuery
		wantErr bool
	}{
		{"empty query", &SearchQuery{Query: ""}, true},
		{"valid query", &SearchQuery{Query: "hello"}, false},
		{"sets default limit", &SearchQuery{Query: "x", Limit: 0}, false},
		{"caps limit at 100", &SearchQuery{Query: "x", Limit: 200}, false},
		{"enables both when both false", &SearchQuery{Query: "x", KeywordEnabled: false, SemanticEnabled: false}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if tt.query.Limit == 0 {
				t.Error("expected default limit to be set")
			}
			if tt.query.Limit > 100 {
				t.Errorf("expected limit capped at 100, got %d", tt.query.Limit)
			}
			if tt.name == "enables both when both false" && (!tt.query.KeywordEnabled || !tt.query.SemanticEnabled) {
				t.Error("expected both keyword and semantic enabled when both were false")
			}
		})
	}
}

func TestSearchQuery_ValidateWeights(t *testing.T) {
	q := &SearchQuery{Query: "x", KeywordEnabled: true, SemanticWeight: 0.9}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	if q.KeywordWeight != 0.5 {
		t.Errorf("keyword weight = %v, want 0.5", q.KeywordWeight)
	}
	if q.SemanticWeight != 0 {
		t.Errorf("semantic weight should be zeroed when semantic is disabled, got %v", q.SemanticWeight)
	}
}

func TestAskRequest_Validate(t *testing.T) {
	if err := (&AskRequest{}).Validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty question: got %v", err)
	}
	if err := (&AskRequest{Question: "why?"}).Validate(); err != nil {
		t.Errorf("valid question: %v", err)
	}
}

func TestVideo_LengthMinutes(t *testing.T) {
	v := &Video{LengthSeconds: 754}
	if got := v.LengthMinutes(); got != 12 {
		t.Errorf("LengthMinutes = %d, want 12", got)
	}
}
