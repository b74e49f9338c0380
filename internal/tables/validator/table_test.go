package validator

import (
	"errors"
	"testing"

	"tablebook/pkg/logger"
	"tablebook/pkg/model"
)

func TestValidateTable(t *testing.T) {
	v := NewTableValidator(logger.Nop())

	tests := []struct {
		name      string
		table     model.Table
		wantField string
	}{
		{"valid", model.Table{TableNumber: 1, Capacity: 4, Status: model.TableAvailable}, ""},
		{"missing number", model.Table{Capacity: 4, Status: model.TableAvailable}, "table_number"},
		{"capacity too large", model.Table{TableNumber: 1, Capacity: 21, Status: model.TableAvailable}, "capacity"},
		{"unknown status", model.Table{TableNumber: 1, Capacity: 2, Status: "BROKEN"}, "status"},
		{"location too long", model.Table{TableNumber: 1, Capacity: 2, Status: model.TableAvailable, Location: string(make([]byte, 51))}, "location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateTable(&tt.table)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if _, ok := verrs.Details()["fields"].(map[string]any)[tt.wantField]; !ok {
				t.Errorf("expected %s to be reported, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewTableValidator(logger.Nop())
	zero := 0

	if err := v.ValidateUpdate(&model.TableUpdate{}); err != nil {
		t.Errorf("empty update should be valid, got %v", err)
	}
	if err := v.ValidateUpdate(&model.TableUpdate{Capacity: &zero}); err == nil {
		t.Error("expected zero capacity to be rejected")
	}
}
