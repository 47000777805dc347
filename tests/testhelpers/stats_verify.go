package testhelpers

import (
	"bytes"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/twitter/ditto/common/stats"
)

/*
add new Checker functions here as needed
*/
/*
errors if a is not float64, returns true if a == b
*/
func FloatEqTest(a, b interface{}) bool {
	if b == nil && a == nil {
		return true
	}
	aflt := a.(float64)
	bflt := b.(float64)
	return aflt == bflt
}

/*
errors if a is not float64, returns true if a > b
*/
func FloatGTTest(a, b interface{}) bool {
	if b == nil && a == nil {
		return true
	}
	aflt := a.(float64)
	bflt := b.(float64)
	return aflt > bflt
}

/*
errors if a is not int64, returns true if a == b
*/
func Int64EqTest(a, b interface{}) bool {
	if b == nil && a == nil {
		return true
	}
	aint := a.(int64)
	bint := b.(int)
	return aint == int64(bint)
}

func DoesNotExist(a, b interface{}) bool {
	return a == nil
}

/*
defines the condition checker to use to validate the measurement.  Each Checker(a, b) implementation
will expect a to be the 'got' value and b to be the 'expected' value.
*/
type Rule struct {
	Checker func(interface{}, interface{}) bool
	Value   interface{}
}

type allMarshaler interface {
	MarshalAll() map[string]interface{}
}

/*
Verify that the stats registry object contains values for the keys in the contains map parameter and that
each entry conforms to the rule (condition) associated with that key.
*/
func VerifyStats(statsRegistry stats.StatsRegistry, t *testing.T, contains map[string]Rule) {
	asFinagleRegistry, ok := statsRegistry.(allMarshaler)
	if !ok {
		t.Errorf("stats registry %T can't be flattened", statsRegistry)
		return
	}

	failed := false
	var msg bytes.Buffer
	msg.WriteString("stats registry error:\n")

	asJson := asFinagleRegistry.MarshalAll()
	for key, rule := range contains {
		checker := runtime.FuncForPC(reflect.ValueOf(rule.Checker).Pointer()).Name()
		gotValue, ok := asJson[key]
		if !ok {
			if !strings.Contains(checker, "DoesNotExist") {
				failed = true
				msg.WriteString(fmt.Sprintf("%s: no stat entry, and checker:%s\n", key, checker))
			}
		} else if rule.Checker != nil && !rule.Checker(gotValue, rule.Value) {
			failed = true
			msg.WriteString(fmt.Sprintf("%s: got %v, expected to pass %s with %v\n", key, gotValue, checker, rule.Value))
		}
	}
	if failed {
		t.Error(msg.String())
	}
}
