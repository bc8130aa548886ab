package results

import (
	"errors"
	"testing"
)

func TestOperationResult(t *testing.T) {
	ok := SuccessResult[int, error](3)
	if !ok.IsSuccess() || ok.IsFailure() || *ok.Success != 3 {
		t.Fatalf("unexpected success result: %+v", ok)
	}

	errBoom := errors.New("boom")
	failed := FailureResult[int, error](errBoom)
	if failed.IsSuccess() || !failed.IsFailure() || !errors.Is(*failed.Failure, errBoom) {
		t.Fatalf("unexpected failure result: %+v", failed)
	}

	var zero OperationResult[int, error]
	if zero.IsSuccess() || zero.IsFailure() {
		t.Fatalf("zero result should be neither success nor failure")
	}
}
