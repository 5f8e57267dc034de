package util

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

// AreEqualJSON reports whether two JSON documents decode to the same value.
func AreEqualJSON(s1, s2 string) (bool, error) {
	var o1, o2 interface{}
	if err := json.Unmarshal([]byte(s1), &o1); err != nil {
		return false, errors.Wrap(err, "parsing first document")
	}
	if err := json.Unmarshal([]byte(s2), &o2); err != nil {
		return false, errors.Wrap(err, "parsing second document")
	}
	return reflect.DeepEqual(o1, o2), nil
}

// AssertError fails the test if the actual error doesn't match the expected error.
// if an error is expected and matches, returns true.
// i.e. the return value is "shouldContinue"
func AssertError(t *testing.T, caseIdx int, expected string, err error) bool {
	t.Helper()
	if err != nil {
		if expected == "" {
			t.Fatalf(`case %d: expected success; got error "%s"`, caseIdx, err.Error())
			return false
		}
		if err.Error() != expected {
			t.Fatalf(`case %d: expected error "%s"; got "%s"`, caseIdx, expected, err.Error())
			return false
		}
		return true
	}
	if expected != "" {
		t.Fatalf(`case %d: expected error "%s"; got success`, caseIdx, expected)
		return false
	}
	return false
}
