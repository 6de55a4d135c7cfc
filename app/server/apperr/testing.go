package apperr

import (
	"fmt"
	"github.com/samber/oops"
	"testing"
)

// AssertCode 断言错误带有指定的错误码，供各个包的测试使用
func AssertCode(t testing.TB, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
		return
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		t.Fatalf("expected oops error with code %s, got %T: %v", code, err, err)
		return
	}
	if got := fmt.Sprint(oopsErr.Code()); got != code {
		t.Errorf("expected error code %s, got %s (%v)", code, got, err)
	}
}
