package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestBuildError_Error(t *testing.T) {
	err := Fatal(CategoryPermalink, "output path collision")
	want := "permalink (fatal): output path collision"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestBuildError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("yaml: line 3: mapping values are not allowed")
	err := Wrap(cause, CategoryContent, SeverityFatal, "malformed front matter")
	if err.Unwrap() != cause {
		t.Error("Unwrap() did not return the cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is failed to match the wrapped cause")
	}
}

func TestBuildError_WithContext(t *testing.T) {
	err := Fatal(CategoryContent, "parse failed").
		WithContext("path", "posts/2024-01-01-hello.md").
		WithContext("line", 3)

	if err.Context["path"] != "posts/2024-01-01-hello.md" {
		t.Errorf("unexpected path context: %v", err.Context["path"])
	}
	if err.Context["line"] != 3 {
		t.Errorf("unexpected line context: %v", err.Context["line"])
	}
}

func TestIsCategory(t *testing.T) {
	err := Fatal(CategoryFeed, "unknown collection")
	if !IsCategory(err, CategoryFeed) {
		t.Error("IsCategory should match feed")
	}
	if IsCategory(err, CategoryConfig) {
		t.Error("IsCategory should not match config")
	}
	if IsCategory(fmt.Errorf("plain"), CategoryFeed) {
		t.Error("plain errors have no category")
	}
}

func TestGetCategory_Fallback(t *testing.T) {
	if got := GetCategory(fmt.Errorf("plain")); got != CategoryInternal {
		t.Errorf("GetCategory(plain) = %v, want internal", got)
	}
}

func TestIsFatal(t *testing.T) {
	if !Fatal(CategoryConfig, "bad").IsFatal() {
		t.Error("fatal error should report IsFatal")
	}
	if ValidationError("soft").IsFatal() {
		t.Error("validation warning should not be fatal")
	}
}
