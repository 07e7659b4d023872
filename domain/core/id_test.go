package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDString tests ID string conversion
func TestIDString(t *testing.T) {
	id := ID("test-123")
	if id.String() != "test-123" {
		t.Errorf("Expected String() to return 'test-123', got '%s'", id.String())
	}
}

func TestParseAnalysisID(t *testing.T) {
	id := NewAnalysisID()
	parsed, err := ParseAnalysisID(" " + id.String() + " ")
	if err != nil {
		t.Fatalf("ParseAnalysisID returned error: %v", err)
	}
	if parsed != id {
		t.Errorf("Expected %s, got %s", id, parsed)
	}

	if _, err := ParseAnalysisID(""); err == nil {
		t.Error("Expected error for empty ID")
	}
	if _, err := ParseAnalysisID("not-a-uuid"); err == nil {
		t.Error("Expected error for malformed ID")
	}
}

func TestComputeInputHashIsOrderIndependent(t *testing.T) {
	a := ComputeInputHash("welch_t", map[string]interface{}{"x": []float64{1, 2}, "y": []float64{3, 4}})
	b := ComputeInputHash("welch_t", map[string]interface{}{"y": []float64{3, 4}, "x": []float64{1, 2}})
	if a != b {
		t.Errorf("Expected identical hashes, got %s and %s", a, b)
	}

	c := ComputeInputHash("student_t", map[string]interface{}{"x": []float64{1, 2}, "y": []float64{3, 4}})
	if a == c {
		t.Error("Expected procedure name to change the hash")
	}
}

func TestIsValidationError(t *testing.T) {
	if !IsValidationError(NewInsufficientDataError("sign", 0, 1)) {
		t.Error("insufficient data should be a validation error")
	}
	if IsValidationError(NewNotFoundError(ErrAnalysisNotFound, "x")) {
		t.Error("not found should not be a validation error")
	}
	if !IsNotFoundError(ErrProcedureNotFound) {
		t.Error("procedure not found should be a not-found error")
	}
}
