package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestGetCode(t *testing.T) {
	tcs := []struct {
		name string
		err  error
		want Code
	}{
		{
			name: "domain error",
			err:  New(CodeGameNotStarted, "no game"),
			want: CodeGameNotStarted,
		},
		{
			name: "wrapped domain error",
			err:  fmt.Errorf("dispatch: %w", New(CodeActionUnknown, "bad action")),
			want: CodeActionUnknown,
		},
		{
			name: "plain error",
			err:  stderrors.New("boom"),
			want: CodeUnknown,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if got := GetCode(tc.err); got != tc.want {
				t.Fatalf("GetCode() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := Wrap(CodeNotFound, "game doc missing", stderrors.New("sql: no rows"))

	if !stderrors.Is(err, New(CodeNotFound, "")) {
		t.Fatal("errors.Is(err, CodeNotFound) = false, want true")
	}
	if stderrors.Is(err, New(CodeGameOver, "")) {
		t.Fatal("errors.Is(err, CodeGameOver) = true, want false")
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("io failure")
	err := Wrap(CodeInternal, "save failed", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("errors.Is(err, cause) = false, want true")
	}
}

func TestHTTPStatus(t *testing.T) {
	tcs := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "invalid argument",
			err:  New(CodeInvalidArgument, "bad payload"),
			want: http.StatusBadRequest,
		},
		{
			name: "game not started",
			err:  New(CodeGameNotStarted, "no game"),
			want: http.StatusBadRequest,
		},
		{
			name: "not found",
			err:  New(CodeNotFound, "missing"),
			want: http.StatusNotFound,
		},
		{
			name: "internal",
			err:  New(CodeInternal, "boom"),
			want: http.StatusInternalServerError,
		},
		{
			name: "non-domain error",
			err:  stderrors.New("boom"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatus(tc.err); got != tc.want {
				t.Fatalf("HTTPStatus() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestWithMetadata(t *testing.T) {
	err := WithMetadata(CodeTargetInvalid, "unknown target", map[string]string{"target_id": "role_finn"})

	var e *Error
	if !stderrors.As(err, &e) {
		t.Fatal("errors.As(err, *Error) = false, want true")
	}
	if got, want := e.Metadata["target_id"], "role_finn"; got != want {
		t.Fatalf("Metadata[target_id] = %q, want %q", got, want)
	}
}
